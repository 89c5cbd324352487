// The bills-worker binary runs the daily overdue sweep: past-due pending
// bills become late, past-due pending transactions become overdue, and the
// debtor of each overdue split expense gets a reminder email.
package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/frankmaximo93/shared-financial-journey/internal/cli"
	"github.com/frankmaximo93/shared-financial-journey/internal/log"
	"github.com/frankmaximo93/shared-financial-journey/internal/notify"
	"github.com/frankmaximo93/shared-financial-journey/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentNotify)

	logger.Info("Starting bills worker")

	cfg := cli.LoadAndValidateConfig(logger)
	registry := cli.BuildRegistry(logger, cfg)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var mailer notify.Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewEmailNotifier(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
			cfg.MailFrom, registry)
		logger.Info("Email reminders enabled", "smtp_host", cfg.SMTPHost)
	} else {
		logger.Info("SMTP not configured, reminders disabled")
	}

	emails := map[string]string{
		cfg.ParticipantAKey: cfg.ParticipantAEmail,
		cfg.ParticipantBKey: cfg.ParticipantBEmail,
	}
	overdue := services.NewOverdueService(repo, mailer, emails)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweep := func() {
		marked, err := overdue.Run(ctx, time.Now())
		if err != nil {
			logger.Error("Overdue sweep failed", "error", err)
			return
		}
		logger.Info("Overdue sweep finished", "transactions_marked", marked)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.OverdueCheckSpec, sweep); err != nil {
		logger.Error("Invalid cron spec", "spec", cfg.OverdueCheckSpec, "error", err)
		return
	}

	// One sweep right away so a restart never waits a full day.
	sweep()

	scheduler.Start()
	logger.Info("Overdue sweep scheduled", "spec", cfg.OverdueCheckSpec)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		cancel()
	})
	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Bills worker stopped")
}
