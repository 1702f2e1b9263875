package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/autobuyer/internal/metrics"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
)

// ReminderRunner runs the reminder job for the whole installation.
type ReminderRunner interface {
	Run(ctx context.Context, target, now time.Time) (services.RunReport, error)
}

type Dependencies struct {
	Auth          *services.AuthService
	Products      *services.ProductService
	Subscriptions *services.SubscriptionService
	Reminders     ReminderRunner
	Registry      *prometheus.Registry
	Logger        *zap.Logger
}

type Handler struct {
	auth          *services.AuthService
	products      *services.ProductService
	subscriptions *services.SubscriptionService
	reminders     ReminderRunner
	metrics       http.Handler
	logger        *zap.Logger

	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	validate     *validator.Validate
	loginLimiter *attemptLimiter
	now          func() time.Time
}

func NewHandler(deps Dependencies, secret string, location *time.Location, cookieSecure bool) (*Handler, error) {
	if deps.Auth == nil || deps.Products == nil || deps.Subscriptions == nil {
		return nil, errors.New("auth, product and subscription services are required")
	}
	if secret == "" {
		return nil, errors.New("secret key is required")
	}
	if location == nil {
		location = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Handler{
		auth:          deps.Auth,
		products:      deps.Products,
		subscriptions: deps.Subscriptions,
		reminders:     deps.Reminders,
		metrics:       metrics.Handler(registry),
		logger:        logger.Named("api"),
		secretKey:     []byte(secret),
		location:      location,
		cookieSecure:  cookieSecure,
		validate:      validator.New(),
		loginLimiter:  newAttemptLimiter(loginAttemptWindow),
		now:           time.Now,
	}, nil
}

// localNow is the current time in the installation's time zone.
func (handler *Handler) localNow() time.Time {
	return services.LocalNow(handler.now(), handler.location)
}
