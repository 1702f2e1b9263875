package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/autobuyer/internal/api"
	"github.com/terraincognita07/autobuyer/internal/cli"
	"github.com/terraincognita07/autobuyer/internal/config"
	"github.com/terraincognita07/autobuyer/internal/db"
	"github.com/terraincognita07/autobuyer/internal/i18n"
	"github.com/terraincognita07/autobuyer/internal/jobs"
	"github.com/terraincognita07/autobuyer/internal/logger"
	"github.com/terraincognita07/autobuyer/internal/mailer"
	"github.com/terraincognita07/autobuyer/internal/metrics"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
)

const usage = `usage: autobuyer [command]

commands:
  serve                       run the HTTP API and the daily reminder job (default)
  remind [-date YYYY-MM-DD]   send reminders once; -date is the due date to remind about
  reset-password <login>      issue a temporary password for a username or email
  migrations                  list schema migrations and whether they are applied
  gen-secret                  print a random SECRET_KEY`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "gen-secret":
		return cli.RunGenerateSecretCommand(out)
	case "help", "-h", "--help":
		_, err := fmt.Fprintln(out, usage)
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{
		FilePath:   cfg.LogFile,
		Production: cfg.Production(),
		Level:      cfg.LogLevel,
	})
	defer func() { _ = log.Sync() }()

	switch command {
	case "serve":
		return serve(cfg, log)
	case "remind":
		return remind(cfg, log, args, out)
	case "reset-password":
		login := ""
		if len(args) > 0 {
			login = args[0]
		}
		return cli.RunResetPasswordCommand(cfg.DBPath, login, out, log)
	case "migrations":
		database, err := db.OpenSQLite(cfg.DBPath, log)
		if err != nil {
			return fmt.Errorf("database init failed: %w", err)
		}
		defer func() { _ = db.Close(database) }()
		return cli.RunMigrationStatusCommand(database, out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
}

// application holds everything both serve and remind need.
type application struct {
	repos         *db.Repositories
	registry      *prometheus.Registry
	subscriptions *services.SubscriptionService
	reminders     *services.ReminderService
	closeFuncs    []func() error
}

func buildApplication(cfg config.Config, log *zap.Logger) (*application, error) {
	database, err := db.OpenSQLite(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	app := &application{
		repos:      db.NewRepositories(database),
		registry:   metrics.NewRegistry(),
		closeFuncs: []func() error{func() error { return db.Close(database) }},
	}

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		app.close()
		return nil, err
	}
	ledger, closeLedger := newReminderLedger(cfg.RedisURL, log)
	if closeLedger != nil {
		app.closeFuncs = append(app.closeFuncs, closeLedger)
	}

	app.subscriptions = services.NewSubscriptionService(app.repos.Subscriptions, app.repos.Products, log.Named("subscriptions"))
	app.reminders = services.NewReminderService(
		app.repos.Subscriptions,
		notifier,
		ledger,
		metrics.NewReminderMetrics(app.registry),
		log.Named("reminders"),
	)
	return app, nil
}

func (app *application) close() {
	for index := len(app.closeFuncs) - 1; index >= 0; index-- {
		_ = app.closeFuncs[index]()
	}
}

func newNotifier(cfg config.Config, log *zap.Logger) (services.Notifier, error) {
	if !cfg.SMTP.Enabled() {
		log.Warn("SMTP_HOST not set, reminders are only logged")
		return mailer.NewLogNotifier(log.Named("mailer")), nil
	}

	translations, err := i18n.NewEmbeddedManager(cfg.MailLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}
	reminderMailer, err := mailer.NewReminderMailer(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		BaseURL:  cfg.BaseURL,
		Language: cfg.MailLanguage,
	}, translations, log.Named("mailer"))
	if err != nil {
		return nil, fmt.Errorf("mailer init failed: %w", err)
	}
	return reminderMailer, nil
}

// newReminderLedger shares "already reminded" state through Redis when
// REDIS_URL is set and reachable, and keeps it in process otherwise.
func newReminderLedger(redisURL string, log *zap.Logger) (services.ReminderLedger, func() error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return services.NewMemoryReminderLedger(services.ReminderLedgerTTL), nil
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Error("invalid REDIS_URL, using in-memory reminder ledger", zap.Error(err))
		return services.NewMemoryReminderLedger(services.ReminderLedgerTTL), nil
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("redis unreachable, using in-memory reminder ledger", zap.Error(err))
		_ = client.Close()
		return services.NewMemoryReminderLedger(services.ReminderLedgerTTL), nil
	}

	log.Info("reminder ledger backed by redis", zap.String("addr", options.Addr))
	return services.NewRedisReminderLedger(client, "", services.ReminderLedgerTTL), client.Close
}

func serve(cfg config.Config, log *zap.Logger) error {
	secretKey, err := cfg.RequireSecretKey()
	if err != nil {
		return fmt.Errorf("%w (run `autobuyer gen-secret`)", err)
	}

	wiring, err := buildApplication(cfg, log)
	if err != nil {
		return err
	}
	defer wiring.close()

	handler, err := api.NewHandler(api.Dependencies{
		Auth:          services.NewAuthService(wiring.repos.Users),
		Products:      services.NewProductService(wiring.repos.Products),
		Subscriptions: wiring.subscriptions,
		Reminders:     wiring.reminders,
		Registry:      wiring.registry,
		Logger:        log,
	}, secretKey, cfg.Location, cfg.CookieSecure)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newFiberApp(handler)

	var scheduler *jobs.Scheduler
	if cfg.ReminderEnabled {
		scheduler = jobs.NewScheduler(wiring.reminders, cfg.ReminderSchedule, cfg.Location, log.Named("jobs"))
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("autobuyer listening",
		zap.String("addr", "0.0.0.0:"+cfg.Port),
		zap.String("db", cfg.DBPath),
		zap.String("tz", cfg.Location.String()),
		zap.Bool("reminders", cfg.ReminderEnabled),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newFiberApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "autobuyer",
		DisableStartupMessage: true,
		ErrorHandler:          jsonErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}

func jsonErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = strings.ToLower(fiberErr.Message)
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func remind(cfg config.Config, log *zap.Logger, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("remind", flag.ContinueOnError)
	flags.SetOutput(out)
	target := flags.String("date", "", "due date to remind about (YYYY-MM-DD), default tomorrow")
	if err := flags.Parse(args); err != nil {
		return err
	}

	now := services.LocalNow(time.Now(), cfg.Location)
	remindDate, err := cli.RemindTarget(*target, now)
	if err != nil {
		return err
	}

	wiring, err := buildApplication(cfg, log)
	if err != nil {
		return err
	}
	defer wiring.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cli.RunRemindCommand(ctx, wiring.reminders, remindDate, now, out)
}
