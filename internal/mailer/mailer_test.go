package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/autobuyer/internal/i18n"
	"github.com/terraincognita07/autobuyer/internal/models"
	"github.com/terraincognita07/autobuyer/internal/services"
	"gopkg.in/gomail.v2"
)

type capturingSender struct {
	messages []*gomail.Message
	err      error
}

func (sender *capturingSender) DialAndSend(messages ...*gomail.Message) error {
	if sender.err != nil {
		return sender.err
	}
	sender.messages = append(sender.messages, messages...)
	return nil
}

func newTestMailer(t *testing.T, sender Sender, language string) *ReminderMailer {
	t.Helper()

	translations, err := i18n.NewEmbeddedManager(i18n.LangDE)
	require.NoError(t, err)

	mailer, err := NewReminderMailerWithSender(sender, Config{
		Username: "reminder@myaboabo.ch",
		BaseURL:  "https://myaboabo.ch/",
		Language: language,
	}, translations, nil)
	require.NoError(t, err)
	mailer.now = func() time.Time { return time.Date(2024, time.June, 16, 7, 0, 0, 0, time.UTC) }
	return mailer
}

func sampleReminder() services.Reminder {
	return services.Reminder{
		User:   models.User{ID: 4, Username: "david", Email: "david@example.com"},
		Target: time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC),
		Subscriptions: []models.Subscription{
			{ID: 1, Product: models.Product{Name: "Pampers Premium", URL: "https://www.galaxus.ch/de/s10/product/pampers-23688428", ImageURL: "/static/pampers.png", Price: "49.90"}},
			{ID: 2, Product: models.Product{URL: "https://example.com/kaffee"}},
		},
	}
}

func TestRenderGermanReminder(t *testing.T) {
	mailer := newTestMailer(t, &capturingSender{}, "de")

	message, err := mailer.Render(sampleReminder())
	require.NoError(t, err)

	assert.Equal(t, "Erinnerung an dein Abo bei MyAboabo.ch", message.Subject)
	assert.Contains(t, message.HTML, "Hallo david")
	assert.Contains(t, message.HTML, "17.06.2024")
	assert.Contains(t, message.HTML, "CHF 49.90")
	assert.Contains(t, message.HTML, "https://myaboabo.ch/static/pampers.png")
	assert.Contains(t, message.HTML, "https://myaboabo.ch/static/Logo_rot.png")
	assert.Contains(t, message.HTML, "jetzt bestellen")
	assert.Contains(t, message.HTML, "Unbekanntes Produkt")
	assert.Contains(t, message.HTML, "k. A.")
	assert.Contains(t, message.HTML, "2024 MyAboabo.ch")
	assert.Contains(t, message.Text, "- Pampers Premium (CHF 49.90): https://www.galaxus.ch/de/s10/product/pampers-23688428")
}

func TestRenderEnglishReminderEscapesProductNames(t *testing.T) {
	mailer := newTestMailer(t, &capturingSender{}, "en-GB")
	reminder := sampleReminder()
	reminder.Subscriptions[0].Product.Name = `<script>alert("x")</script>`

	message, err := mailer.Render(reminder)
	require.NoError(t, err)

	assert.Equal(t, "Reminder about your subscription at MyAboabo.ch", message.Subject)
	assert.Contains(t, message.HTML, "17 June 2024")
	assert.NotContains(t, message.HTML, "<script>")
	assert.Contains(t, message.HTML, "order now")
}

func TestNotifyDueSendsOneMessage(t *testing.T) {
	sender := &capturingSender{}
	mailer := newTestMailer(t, sender, "de")

	require.NoError(t, mailer.NotifyDue(context.Background(), sampleReminder()))
	require.Len(t, sender.messages, 1)

	message := sender.messages[0]
	assert.Equal(t, []string{"david@example.com"}, message.GetHeader("To"))
	assert.Equal(t, []string{"reminder@myaboabo.ch"}, message.GetHeader("From"))

	var body strings.Builder
	_, err := message.WriteTo(&body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "text/html")
}

func TestNotifyDueRejectsIncompleteReminders(t *testing.T) {
	sender := &capturingSender{}
	mailer := newTestMailer(t, sender, "de")

	reminder := sampleReminder()
	reminder.User.Email = " "
	assert.ErrorIs(t, mailer.NotifyDue(context.Background(), reminder), ErrNoRecipient)

	reminder = sampleReminder()
	reminder.Subscriptions = nil
	assert.ErrorIs(t, mailer.NotifyDue(context.Background(), reminder), ErrNothingDue)
	assert.Empty(t, sender.messages)
}

func TestNotifyDueWrapsSenderErrors(t *testing.T) {
	sender := &capturingSender{err: errors.New("535 authentication failed")}
	mailer := newTestMailer(t, sender, "de")

	err := mailer.NotifyDue(context.Background(), sampleReminder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "david@example.com")
	assert.ErrorIs(t, err, sender.err)
}

func TestNewReminderMailerRequiresHost(t *testing.T) {
	translations, err := i18n.NewEmbeddedManager(i18n.LangDE)
	require.NoError(t, err)

	_, err = NewReminderMailer(Config{Port: 465}, translations, nil)
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "CHF 12.50", formatPrice(" 12.50 ", "n/a"))
	assert.Equal(t, "CHF 12.50", formatPrice("CHF 12.50", "n/a"))
	assert.Equal(t, "n/a", formatPrice("N/A", "n/a"))
	assert.Equal(t, "n/a", formatPrice("", "n/a"))
}
