// Package export appends monthly bill summaries to a shared Google Sheet so
// the household keeps an archive outside the app.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
)

// BillExporter is the outbound port the HTTP layer depends on.
type BillExporter interface {
	ExportMonth(ctx context.Context, year int, month time.Month, bills []core.Bill) (rowRef string, err error)
}

// Client writes bill rows to one spreadsheet. Sheet names are year-prefixed,
// e.g. "2026 Contas", so each year gets its own tab.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	registry      *participants.Registry
}

var _ BillExporter = (*Client)(nil)

// ErrNotConfigured is returned by NewFromEnv when no spreadsheet is set up.
// Callers treat it as "export disabled", not as a failure.
var ErrNotConfigured = errors.New("spreadsheet export not configured")

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service-account credentials in
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: BILLS_SHEET_NAME (default "Contas").
func NewFromEnv(ctx context.Context, registry *participants.Registry) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, ErrNotConfigured
	}

	sheetBase := strings.TrimSpace(os.Getenv("BILLS_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Contas"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		registry:      registry,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inlineJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	credFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inlineJSON == "" && credFile == "" {
		credFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inlineJSON != "":
		credentialsJSON = []byte(inlineJSON)
	case credFile != "":
		b, err := os.ReadFile(credFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// ExportMonth appends one row per bill plus a totals row after the current
// contents of the year's tab, and returns the written range.
func (c *Client) ExportMonth(ctx context.Context, year int, month time.Month, bills []core.Bill) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheetName := yearPrefixedName(c.sheetBase, year)

	// Find the next empty row from the current sheet height.
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rng, err)
	}
	startRow := len(resp.Values) + 1

	period := fmt.Sprintf("%02d/%d", int(month), year)
	values := make([][]any, 0, len(bills)+1)
	var total int64
	for _, b := range bills {
		values = append(values, []any{
			period,
			b.Name,
			float64(b.Amount.Cents) / 100.0,
			statusLabel(b.Status),
			b.DueDate.Format("02/01/2006"),
			c.registry.DisplayName(b.Responsibility),
			b.Category,
		})
		total += b.Amount.Cents
	}
	values = append(values, []any{period, "Total", float64(total) / 100.0, "", "", "", ""})

	endRow := startRow + len(values) - 1
	dataRange := fmt.Sprintf("%s!A%d:G%d", sheetName, startRow, endRow)
	vr := &gsheet.ValueRange{Values: values}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "Exported month bills to spreadsheet",
		"sheet", sheetName,
		"period", period,
		"rows", len(bills))

	return dataRange, nil
}

func statusLabel(s core.BillStatus) string {
	switch s {
	case core.BillPaid:
		return "Pago"
	case core.BillPending:
		return "Pendente"
	case core.BillLate:
		return "Atrasado"
	case core.BillUpcoming:
		return "Próxima"
	default:
		return string(s)
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
