package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/terraincognita07/autobuyer/internal/i18n"
	"github.com/terraincognita07/autobuyer/internal/schedule"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var (
	ErrMailerNotConfigured = errors.New("mailer not configured")
	ErrNoRecipient         = errors.New("reminder has no recipient")
	ErrNothingDue          = errors.New("reminder has no subscriptions")
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
	Language string
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(messages ...*gomail.Message) error
}

type Message struct {
	Subject string
	HTML    string
	Text    string
}

type ReminderMailer struct {
	sender       Sender
	from         string
	baseURL      string
	language     string
	translations *i18n.Manager
	page         *template.Template
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderMailer dials SMTP with the configured credentials. Port 465
// uses implicit TLS, other ports STARTTLS when offered.
func NewReminderMailer(cfg Config, translations *i18n.Manager, logger *zap.Logger) (*ReminderMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port <= 0 {
		return nil, ErrMailerNotConfigured
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewReminderMailerWithSender(dialer, cfg, translations, logger)
}

func NewReminderMailerWithSender(sender Sender, cfg Config, translations *i18n.Manager, logger *zap.Logger) (*ReminderMailer, error) {
	if translations == nil {
		return nil, errors.New("mailer needs translations")
	}
	page, err := template.ParseFS(templateFiles, "templates/reminder.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse reminder template: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = strings.TrimSpace(cfg.Username)
	}

	return &ReminderMailer{
		sender:       sender,
		from:         from,
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		language:     translations.NormalizeLanguage(cfg.Language),
		translations: translations,
		page:         page,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// NotifyDue mails one reminder listing every due subscription of the user.
func (mailer *ReminderMailer) NotifyDue(ctx context.Context, reminder services.Reminder) error {
	recipient := strings.TrimSpace(reminder.User.Email)
	if recipient == "" {
		return ErrNoRecipient
	}
	if len(reminder.Subscriptions) == 0 {
		return ErrNothingDue
	}

	rendered, err := mailer.Render(reminder)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", mailer.from)
	message.SetHeader("To", recipient)
	message.SetHeader("Subject", rendered.Subject)
	message.SetBody("text/plain", rendered.Text)
	message.AddAlternative("text/html", rendered.HTML)

	if err := mailer.sender.DialAndSend(message); err != nil {
		return fmt.Errorf("send reminder to %s: %w", recipient, err)
	}
	mailer.logger.Debug("reminder mail delivered",
		zap.Uint("user_id", reminder.User.ID),
		zap.Int("items", len(reminder.Subscriptions)),
	)
	return nil
}

type pageColumns struct {
	Product string
	Image   string
	Price   string
	Order   string
}

type pageItem struct {
	Title    string
	ImageURL string
	ImageAlt string
	Price    string
	OrderURL string
}

type pageData struct {
	Language  string
	Subject   string
	Preheader string
	LogoURL   string
	Greeting  string
	Intro     string
	Columns   pageColumns
	Items     []pageItem
	OrderNow  string
	Footer    string
	Manage    string
	ManageURL string
	Year      int
}

func (mailer *ReminderMailer) Render(reminder services.Reminder) (Message, error) {
	t := func(key string, args ...any) string {
		if len(args) == 0 {
			return mailer.translations.Translate(mailer.language, key)
		}
		return mailer.translations.Translatef(mailer.language, key, args...)
	}

	name := strings.TrimSpace(reminder.User.Username)
	data := pageData{
		Language:  mailer.language,
		Subject:   t("mail.reminder.subject"),
		Preheader: t("mail.reminder.preheader"),
		Greeting:  t("mail.reminder.greeting", name),
		Intro:     t("mail.reminder.intro", formatDueDate(reminder.Target, mailer.language)),
		Columns: pageColumns{
			Product: t("mail.reminder.column.product"),
			Image:   t("mail.reminder.column.image"),
			Price:   t("mail.reminder.column.price"),
			Order:   t("mail.reminder.column.order"),
		},
		OrderNow: t("mail.reminder.order_now"),
		Footer:   t("mail.reminder.footer"),
		Manage:   t("mail.reminder.manage"),
		Year:     mailer.now().Year(),
	}
	if mailer.baseURL != "" {
		data.LogoURL = mailer.baseURL + "/static/Logo_rot.png"
		data.ManageURL = mailer.baseURL + "/"
	}

	var text strings.Builder
	text.WriteString(data.Greeting + "\n\n" + data.Intro + "\n\n")
	for _, subscription := range reminder.Subscriptions {
		product := subscription.Product
		item := pageItem{
			Title:    strings.TrimSpace(product.Name),
			ImageURL: mailer.absoluteURL(product.ImageURL),
			Price:    formatPrice(product.Price, t("mail.reminder.price_unknown")),
			OrderURL: product.URL,
		}
		if item.Title == "" {
			item.Title = t("mail.reminder.unknown_product")
		}
		if item.OrderURL == "" {
			item.OrderURL = "#"
		}
		item.ImageAlt = t("mail.reminder.image_alt", item.Title)
		data.Items = append(data.Items, item)
		text.WriteString(t("mail.reminder.text_line", item.Title, item.Price, item.OrderURL) + "\n")
	}
	text.WriteString("\n" + data.Footer + "\n")

	var html bytes.Buffer
	if err := mailer.page.ExecuteTemplate(&html, "reminder.html.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render reminder: %w", err)
	}
	return Message{Subject: data.Subject, HTML: html.String(), Text: text.String()}, nil
}

func (mailer *ReminderMailer) absoluteURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if mailer.baseURL == "" {
		return ""
	}
	return mailer.baseURL + "/" + strings.TrimLeft(value, "/")
}

func formatPrice(raw string, unknown string) string {
	price := strings.TrimSpace(raw)
	if price == "" || strings.EqualFold(price, "n/a") {
		return unknown
	}
	if strings.HasPrefix(strings.ToUpper(price), "CHF") {
		return price
	}
	return "CHF " + price
}

func formatDueDate(target time.Time, language string) string {
	if target.IsZero() {
		return ""
	}
	date := schedule.DateOf(target)
	if language == i18n.LangDE {
		return date.Format("02.01.2006")
	}
	return date.Format("2 January 2006")
}
