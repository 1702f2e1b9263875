package db

import "gorm.io/gorm"

type Repositories struct {
	Users         *UserRepository
	Products      *ProductRepository
	Subscriptions *SubscriptionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Products:      NewProductRepository(database),
		Subscriptions: NewSubscriptionRepository(database),
	}
}
