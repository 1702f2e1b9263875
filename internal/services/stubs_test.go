package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/terraincognita07/autobuyer/internal/models"
	"gorm.io/gorm"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

type stubSubscriptionRepo struct {
	rows       []models.Subscription
	listErr    error
	updateErr  error
	nextDueSet map[uint]time.Time
	nextID     uint
}

func newStubSubscriptionRepo(rows ...models.Subscription) *stubSubscriptionRepo {
	return &stubSubscriptionRepo{rows: rows, nextDueSet: make(map[uint]time.Time), nextID: 100}
}

func (stub *stubSubscriptionRepo) Create(subscription *models.Subscription) error {
	stub.nextID++
	subscription.ID = stub.nextID
	stub.rows = append(stub.rows, *subscription)
	return nil
}

func (stub *stubSubscriptionRepo) Save(subscription *models.Subscription) error {
	for index := range stub.rows {
		if stub.rows[index].ID == subscription.ID {
			stub.rows[index] = *subscription
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (stub *stubSubscriptionRepo) FindByIDForUser(subscriptionID uint, userID uint) (models.Subscription, error) {
	for _, row := range stub.rows {
		if row.ID == subscriptionID && row.UserID == userID {
			return row, nil
		}
	}
	return models.Subscription{}, gorm.ErrRecordNotFound
}

func (stub *stubSubscriptionRepo) ListByUser(userID uint) ([]models.Subscription, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	result := make([]models.Subscription, 0)
	for _, row := range stub.rows {
		if row.UserID == userID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (stub *stubSubscriptionRepo) ListActiveWithOwners() ([]models.Subscription, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	result := make([]models.Subscription, 0)
	for _, row := range stub.rows {
		if row.IsActive {
			result = append(result, row)
		}
	}
	return result, nil
}

func (stub *stubSubscriptionRepo) UpdateNextDueDate(subscriptionID uint, nextDue time.Time) error {
	if stub.updateErr != nil {
		return stub.updateErr
	}
	stub.nextDueSet[subscriptionID] = nextDue
	for index := range stub.rows {
		if stub.rows[index].ID == subscriptionID {
			value := nextDue
			stub.rows[index].NextDueDate = &value
		}
	}
	return nil
}

func (stub *stubSubscriptionRepo) SetActive(subscriptionID uint, userID uint, active bool) (bool, error) {
	for index := range stub.rows {
		if stub.rows[index].ID == subscriptionID && stub.rows[index].UserID == userID {
			stub.rows[index].IsActive = active
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubSubscriptionRepo) DeleteForUser(subscriptionID uint, userID uint) (bool, error) {
	for index := range stub.rows {
		if stub.rows[index].ID == subscriptionID && stub.rows[index].UserID == userID {
			stub.rows = append(stub.rows[:index], stub.rows[index+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type stubProductRepo struct {
	rows   []models.Product
	nextID uint
}

func (stub *stubProductRepo) ListByUser(userID uint) ([]models.Product, error) {
	result := make([]models.Product, 0)
	for _, row := range stub.rows {
		if row.UserID == userID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (stub *stubProductRepo) FindByIDForUser(productID uint, userID uint) (models.Product, error) {
	for _, row := range stub.rows {
		if row.ID == productID && row.UserID == userID {
			return row, nil
		}
	}
	return models.Product{}, gorm.ErrRecordNotFound
}

func (stub *stubProductRepo) Create(product *models.Product) error {
	stub.nextID++
	product.ID = stub.nextID
	stub.rows = append(stub.rows, *product)
	return nil
}

func (stub *stubProductRepo) SetActive(productID uint, userID uint, active bool) (bool, error) {
	for index := range stub.rows {
		if stub.rows[index].ID == productID && stub.rows[index].UserID == userID {
			stub.rows[index].IsActive = active
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubProductRepo) DeleteForUser(productID uint, userID uint) (bool, error) {
	for index := range stub.rows {
		if stub.rows[index].ID == productID && stub.rows[index].UserID == userID {
			stub.rows = append(stub.rows[:index], stub.rows[index+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	reminders []Reminder
	failFor   map[uint]bool
}

func (notifier *recordingNotifier) NotifyDue(_ context.Context, reminder Reminder) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.failFor[reminder.User.ID] {
		return errors.New("smtp unavailable")
	}
	notifier.reminders = append(notifier.reminders, reminder)
	return nil
}

type recordingRecorder struct {
	reports []RunReport
}

func (recorder *recordingRecorder) ObserveRun(report RunReport) {
	recorder.reports = append(recorder.reports, report)
}

func subscriptionRow(id uint, userID uint, start string, preset string) models.Subscription {
	return models.Subscription{
		ID:                id,
		UserID:            userID,
		ProductID:         id,
		StartDate:         start,
		FrequencyKind:     models.FrequencyKindPreset,
		FrequencyPreset:   preset,
		DayConstraintKind: models.ConstraintKindNone,
		IsActive:          true,
		User:              models.User{ID: userID, Username: "user", Email: "user@example.com"},
		Product:           models.Product{ID: id, Name: "Product"},
	}
}
