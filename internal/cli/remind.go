package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/terraincognita07/autobuyer/internal/db"
	"github.com/terraincognita07/autobuyer/internal/schedule"
	"github.com/terraincognita07/autobuyer/internal/services"
	"gorm.io/gorm"
)

type ReminderRunner interface {
	Run(ctx context.Context, target, now time.Time) (services.RunReport, error)
}

// RemindTarget resolves the -date flag. Empty means tomorrow. Due dates are
// always after today, so a target that is not is rejected.
func RemindTarget(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return schedule.ReminderTarget(now), nil
	}
	target, err := schedule.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid target date %q", raw)
	}
	if !target.After(schedule.DateOf(now)) {
		return time.Time{}, fmt.Errorf("target date %s is not after today", schedule.FormatDate(target))
	}
	return target, nil
}

// RunRemindCommand runs the reminder job once for target and prints its
// report as JSON. A run with failed notifications exits with an error after
// printing.
func RunRemindCommand(ctx context.Context, runner ReminderRunner, target, now time.Time, out io.Writer) error {
	report, runErr := runner.Run(ctx, target, now)

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	for _, skipped := range report.Skipped {
		fmt.Fprintf(out, "skipped record %d: %v\n", skipped.Index, skipped.Err)
	}

	if runErr != nil {
		return runErr
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d reminder(s) could not be sent", report.Failed)
	}
	return nil
}

func RunMigrationStatusCommand(database *gorm.DB, out io.Writer) error {
	states, err := db.MigrationStatus(database)
	if err != nil {
		return err
	}
	for _, state := range states {
		status := "pending"
		if state.Applied {
			status = "applied"
		}
		fmt.Fprintf(out, "%04d  %-40s %s\n", state.Version, state.Name, status)
	}
	return nil
}
