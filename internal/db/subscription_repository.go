package db

import (
	"time"

	"github.com/terraincognita07/autobuyer/internal/models"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	database *gorm.DB
}

func NewSubscriptionRepository(database *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{database: database}
}

func (repo *SubscriptionRepository) Create(subscription *models.Subscription) error {
	return repo.database.Omit("User", "Product").Create(subscription).Error
}

func (repo *SubscriptionRepository) Save(subscription *models.Subscription) error {
	return repo.database.Omit("User", "Product").Save(subscription).Error
}

func (repo *SubscriptionRepository) FindByIDForUser(subscriptionID uint, userID uint) (models.Subscription, error) {
	var subscription models.Subscription
	if err := repo.database.
		Preload("Product").
		Where("id = ? AND user_id = ?", subscriptionID, userID).
		First(&subscription).Error; err != nil {
		return models.Subscription{}, err
	}
	return subscription, nil
}

func (repo *SubscriptionRepository) ListByUser(userID uint) ([]models.Subscription, error) {
	subscriptions := make([]models.Subscription, 0)
	if err := repo.database.
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// ListActiveWithOwners loads every active subscription with its user and
// product, ordered by id so reminder runs are deterministic.
func (repo *SubscriptionRepository) ListActiveWithOwners() ([]models.Subscription, error) {
	subscriptions := make([]models.Subscription, 0)
	if err := repo.database.
		Preload("User").
		Preload("Product").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (repo *SubscriptionRepository) UpdateNextDueDate(subscriptionID uint, nextDue time.Time) error {
	return repo.database.Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		UpdateColumn("next_due_date", nextDue).Error
}

func (repo *SubscriptionRepository) SetActive(subscriptionID uint, userID uint, active bool) (bool, error) {
	result := repo.database.Model(&models.Subscription{}).
		Where("id = ? AND user_id = ?", subscriptionID, userID).
		Update("is_active", active)
	return result.RowsAffected > 0, result.Error
}

func (repo *SubscriptionRepository) DeleteForUser(subscriptionID uint, userID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", subscriptionID, userID).Delete(&models.Subscription{})
	return result.RowsAffected > 0, result.Error
}
