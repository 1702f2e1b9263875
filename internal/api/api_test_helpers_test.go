package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/autobuyer/internal/db"
	"github.com/terraincognita07/autobuyer/internal/metrics"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecretKey = "test-secret-key-with-at-least-32-characters"

var testNow = time.Date(2024, time.June, 16, 7, 0, 0, 0, time.UTC)

type capturingNotifier struct {
	mu        sync.Mutex
	reminders []services.Reminder
}

func (notifier *capturingNotifier) NotifyDue(_ context.Context, reminder services.Reminder) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.reminders = append(notifier.reminders, reminder)
	return nil
}

type testEnv struct {
	app      *fiber.App
	database *gorm.DB
	notifier *capturingNotifier
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "autobuyer.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	repos := db.NewRepositories(database)
	notifier := &capturingNotifier{}
	registry := prometheus.NewRegistry()

	handler, err := NewHandler(Dependencies{
		Auth:          services.NewAuthService(repos.Users),
		Products:      services.NewProductService(repos.Products),
		Subscriptions: services.NewSubscriptionService(repos.Subscriptions, repos.Products, nil),
		Reminders: services.NewReminderService(
			repos.Subscriptions,
			notifier,
			services.NewMemoryReminderLedger(services.ReminderLedgerTTL),
			metrics.NewReminderMetrics(registry),
			nil,
		),
		Registry: registry,
	}, testSecretKey, time.UTC, false)
	require.NoError(t, err)
	handler.now = func() time.Time { return testNow }

	app := fiber.New()
	RegisterRoutes(app, handler)
	return testEnv{app: app, database: database, notifier: notifier}
}

func (env testEnv) request(t *testing.T, method string, path string, payload any, token string) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	require.NoError(t, err)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, raw
}

// register creates an account and returns its session token.
func (env testEnv) register(t *testing.T, username string) string {
	t.Helper()

	response, raw := env.request(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "StrongPass1",
	}, "")
	require.Equal(t, http.StatusCreated, response.StatusCode, string(raw))

	var decoded struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotEmpty(t, decoded.Token)
	return decoded.Token
}

func (env testEnv) addProduct(t *testing.T, token string, url string) uint {
	t.Helper()

	response, raw := env.request(t, http.MethodPost, "/api/products", fiber.Map{"url": url}, token)
	require.Equal(t, http.StatusCreated, response.StatusCode, string(raw))

	var decoded struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded.ID
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}
