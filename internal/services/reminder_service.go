package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/autobuyer/internal/models"
	"github.com/terraincognita07/autobuyer/internal/schedule"
	"go.uber.org/zap"
)

var ErrReminderLoadFailed = errors.New("reminder load failed")

type ReminderSubscriptionRepository interface {
	ListActiveWithOwners() ([]models.Subscription, error)
	UpdateNextDueDate(subscriptionID uint, nextDue time.Time) error
}

// Reminder is one notification: every subscription of a single user that
// falls due on Target.
type Reminder struct {
	User          models.User
	Target        time.Time
	Subscriptions []models.Subscription
}

type Notifier interface {
	NotifyDue(ctx context.Context, reminder Reminder) error
}

type ReminderRecorder interface {
	ObserveRun(report RunReport)
}

type RunReport struct {
	RunID       string                 `json:"run_id"`
	Target      string                 `json:"target"`
	StartedAt   time.Time              `json:"started_at"`
	Duration    time.Duration          `json:"duration_ns"`
	Candidates  int                    `json:"candidates"`
	Due         int                    `json:"due"`
	Users       int                    `json:"users"`
	Sent        int                    `json:"sent"`
	AlreadySent int                    `json:"already_sent"`
	Failed      int                    `json:"failed"`
	Refreshed   int                    `json:"refreshed"`
	Skipped     []schedule.RecordError `json:"-"`
}

type ReminderService struct {
	subscriptions ReminderSubscriptionRepository
	notifier      Notifier
	ledger        ReminderLedger
	recorder      ReminderRecorder
	logger        *zap.Logger
}

func NewReminderService(
	subscriptions ReminderSubscriptionRepository,
	notifier Notifier,
	ledger ReminderLedger,
	recorder ReminderRecorder,
	logger *zap.Logger,
) *ReminderService {
	if ledger == nil {
		ledger = NewMemoryReminderLedger(ReminderLedgerTTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{
		subscriptions: subscriptions,
		notifier:      notifier,
		ledger:        ledger,
		recorder:      recorder,
		logger:        logger,
	}
}

// Run sends one reminder per user whose active subscriptions fall due on
// target. now is the real current time: due dates are always computed and
// stored relative to it, whatever the target. A failed notification only
// affects its user. Stored next due dates are refreshed for every loaded
// subscription.
func (service *ReminderService) Run(ctx context.Context, target, now time.Time) (report RunReport, err error) {
	target = schedule.DateOf(target)
	report = RunReport{
		RunID:     uuid.NewString(),
		Target:    schedule.FormatDate(target),
		StartedAt: now,
	}
	logger := service.logger.With(zap.String("run_id", report.RunID), zap.String("target", report.Target))
	began := time.Now()
	defer func() {
		report.Duration = time.Since(began)
		if service.recorder != nil {
			service.recorder.ObserveRun(report)
		}
	}()

	loaded, err := service.subscriptions.ListActiveWithOwners()
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrReminderLoadFailed, err)
	}
	report.Candidates = len(loaded)

	selection := schedule.SelectDue(loaded, target, now)
	report.Due = len(selection.Due)
	report.Skipped = selection.Skipped
	for _, skipped := range selection.Skipped {
		logger.Warn("subscription skipped",
			zap.Uint("subscription_id", loaded[skipped.Index].ID),
			zap.Error(skipped.Err),
		)
	}

	reminders := groupByUser(selection.Due, target)
	report.Users = len(reminders)
	for _, reminder := range reminders {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		service.deliver(ctx, logger, reminder, &report)
	}

	report.Refreshed = service.refreshNextDue(logger, loaded, now)

	logger.Info("reminder run finished",
		zap.Int("candidates", report.Candidates),
		zap.Int("due", report.Due),
		zap.Int("sent", report.Sent),
		zap.Int("already_sent", report.AlreadySent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func (service *ReminderService) deliver(ctx context.Context, logger *zap.Logger, reminder Reminder, report *RunReport) {
	userLogger := logger.With(zap.Uint("user_id", reminder.User.ID))

	claimed, err := service.ledger.Claim(ctx, reminder.User.ID, reminder.Target)
	if err != nil {
		userLogger.Warn("reminder ledger unavailable, sending anyway", zap.Error(err))
		claimed = true
	}
	if !claimed {
		report.AlreadySent++
		return
	}

	if err := service.notifier.NotifyDue(ctx, reminder); err != nil {
		report.Failed++
		userLogger.Error("reminder not sent", zap.Int("subscriptions", len(reminder.Subscriptions)), zap.Error(err))
		if releaseErr := service.ledger.Release(ctx, reminder.User.ID, reminder.Target); releaseErr != nil {
			userLogger.Warn("reminder ledger release failed", zap.Error(releaseErr))
		}
		return
	}

	report.Sent++
	userLogger.Info("reminder sent", zap.Int("subscriptions", len(reminder.Subscriptions)))
}

func (service *ReminderService) refreshNextDue(logger *zap.Logger, subscriptions []models.Subscription, now time.Time) int {
	refreshed := 0
	for _, subscription := range subscriptions {
		plan, err := subscription.SchedulePlan()
		if err != nil {
			continue
		}
		nextDue := plan.NextDue(now)
		if subscription.NextDueEquals(nextDue) {
			continue
		}
		if err := service.subscriptions.UpdateNextDueDate(subscription.ID, nextDue); err != nil {
			logger.Warn("next due refresh failed", zap.Uint("subscription_id", subscription.ID), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed
}

// groupByUser keeps users in order of first appearance.
func groupByUser(due []models.Subscription, target time.Time) []Reminder {
	reminders := make([]Reminder, 0)
	positions := make(map[uint]int)
	for _, subscription := range due {
		position, ok := positions[subscription.UserID]
		if !ok {
			position = len(reminders)
			positions[subscription.UserID] = position
			owner := subscription.User
			owner.ID = subscription.UserID
			reminders = append(reminders, Reminder{User: owner, Target: target})
		}
		reminders[position].Subscriptions = append(reminders[position].Subscriptions, subscription)
	}
	return reminders
}
