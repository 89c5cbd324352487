// Package notify sends reminder emails for overdue split expenses.
package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
)

// Mailer is what the overdue service needs; satisfied by *EmailNotifier.
type Mailer interface {
	SendDebtReminder(to string, t core.Transaction, debt core.Debt) error
}

type EmailNotifier struct {
	dialer   *gomail.Dialer
	from     string
	registry *participants.Registry
}

func NewEmailNotifier(host string, port int, username, password, from string, registry *participants.Registry) *EmailNotifier {
	return &EmailNotifier{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		registry: registry,
	}
}

// SendDebtReminder mails the debtor about an unpaid half of a split expense.
func (n *EmailNotifier) SendDebtReminder(to string, t core.Transaction, debt core.Debt) error {
	payer := n.registry.DisplayName(t.PaidBy)
	debtor := n.registry.DisplayName(debt.Debtor)

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Lembrete: despesa dividida \"%s\" vencida", t.Description))
	m.SetBody("text/plain", fmt.Sprintf(
		"Olá %s,\n\n"+
			"A despesa \"%s\" de %s venceu em %s.\n"+
			"%s pagou e a sua metade é %s.\n\n"+
			"Finanças do Casal",
		debtor,
		t.Description,
		t.Amount.Format(),
		t.DueDate.Format("02/01/2006"),
		payer,
		debt.Amount.Format(),
	))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send debt reminder: %w", err)
	}
	return nil
}
