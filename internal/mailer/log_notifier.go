package mailer

import (
	"context"

	"github.com/terraincognita07/autobuyer/internal/schedule"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
)

// LogNotifier stands in for SMTP when no mail server is configured. It only
// logs what would have been sent.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (notifier *LogNotifier) NotifyDue(_ context.Context, reminder services.Reminder) error {
	products := make([]string, 0, len(reminder.Subscriptions))
	for _, subscription := range reminder.Subscriptions {
		products = append(products, subscription.Product.Name)
	}
	notifier.logger.Info("reminder (mail disabled)",
		zap.Uint("user_id", reminder.User.ID),
		zap.String("email", reminder.User.Email),
		zap.String("target", schedule.FormatDate(reminder.Target)),
		zap.Strings("products", products),
	)
	return nil
}
