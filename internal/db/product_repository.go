package db

import (
	"github.com/terraincognita07/autobuyer/internal/models"
	"gorm.io/gorm"
)

type ProductRepository struct {
	database *gorm.DB
}

func NewProductRepository(database *gorm.DB) *ProductRepository {
	return &ProductRepository{database: database}
}

func (repo *ProductRepository) ListByUser(userID uint) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("added_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (repo *ProductRepository) FindByIDForUser(productID uint, userID uint) (models.Product, error) {
	var product models.Product
	if err := repo.database.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (repo *ProductRepository) Create(product *models.Product) error {
	return repo.database.Create(product).Error
}

func (repo *ProductRepository) SetActive(productID uint, userID uint, active bool) (bool, error) {
	result := repo.database.Model(&models.Product{}).
		Where("id = ? AND user_id = ?", productID, userID).
		Update("is_active", active)
	return result.RowsAffected > 0, result.Error
}

// DeleteForUser removes the product together with its subscriptions.
func (repo *ProductRepository) DeleteForUser(productID uint, userID uint) (bool, error) {
	deleted := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ? AND user_id = ?", productID, userID).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", productID, userID).Delete(&models.Product{})
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, err
}
