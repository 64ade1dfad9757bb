package commands

import (
	"context"
	"fmt"
	"mangabuff-tracker/internal/components/chrono"
	"mangabuff-tracker/internal/components/telemetry"
	"mangabuff-tracker/internal/notify"
	"mangabuff-tracker/internal/scrapers/mangabuff"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const report_watch_run = "watch.run"

func init() {
	rootCmd.AddCommand(watchCmd)
}

func newNotifier() (notify.Notifier, error) {
	switch cfg.Notify.Kind {
	case "stdout":
		return notify.NewWriterNotifier(os.Stdout), nil
	case "email":
		if cfg.Notify.Smtp.Server == "" || cfg.Notify.Smtp.EmailAddress == "" {
			return nil, fmt.Errorf("notify: email needs smtp.server and smtp.email_address")
		}
		return notify.NewEmailNotifier(cfg.Notify.Smtp, cfg.Notify.To, tel), nil
	}
	return nil, fmt.Errorf("notify: unknown kind '%s'", cfg.Notify.Kind)
}

func watchOnce(ctx context.Context, query mangabuff.Query, notifier notify.Notifier) {
	cards, err := runQuery(ctx, query, true)
	if err != nil {
		tel.ReportBroken(report_watch_run, err, mangabuff.KindOf(err).String())
		return
	}
	if len(cards) == 0 {
		tel.ReportDebug("nothing to report")
		return
	}

	subject := fmt.Sprintf("MangaBuff: %d cards on the market", len(cards))
	err = notifier.Notify(ctx, subject, mangabuff.FormatCards(cards))
	if err != nil {
		tel.ReportBroken(report_watch_run, fmt.Errorf("notify: %w", err))
	}
}

// schedule registers job once for every cron spec.
func schedule(cron chrono.CronAPI, specs []string, job func()) error {
	if len(specs) == 0 {
		return fmt.Errorf("watch: no schedules configured")
	}
	for _, spec := range specs {
		err := cron.Cron(spec, job)
		if err != nil {
			return fmt.Errorf("watch: schedule '%s': %w", spec, err)
		}
	}
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Runs the configured query on a schedule and reports what it finds.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		query, err := cfg.Watch.Query.Query()
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		location, err := time.LoadLocation(cfg.Watch.Location)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		notifier, err := newNotifier()
		if err != nil {
			return err
		}

		cron := chrono.NewStandardCron(tel, location)
		err = schedule(cron, cfg.Watch.Schedules, func() {
			watchOnce(ctx, query, notifier)
		})
		if err != nil {
			return err
		}

		telemetry.InstrumentPerfStats(ctx, tel)
		cron.Start()
		tel.ReportDebug("watching", cfg.Watch.Schedules, cfg.Watch.Location)

		<-ctx.Done()
		cron.Stop()
		return nil
	},
}
