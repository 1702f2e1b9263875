package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/autobuyer/internal/models"
	"github.com/terraincognita07/autobuyer/internal/schedule"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound        = errors.New("subscription not found")
	ErrSubscriptionProductNotFound = errors.New("subscription product not found")
	ErrSubscriptionInvalidSchedule = errors.New("subscription schedule invalid")
)

type SubscriptionRepository interface {
	Create(subscription *models.Subscription) error
	Save(subscription *models.Subscription) error
	FindByIDForUser(subscriptionID uint, userID uint) (models.Subscription, error)
	ListByUser(userID uint) ([]models.Subscription, error)
	UpdateNextDueDate(subscriptionID uint, nextDue time.Time) error
	SetActive(subscriptionID uint, userID uint, active bool) (bool, error)
	DeleteForUser(subscriptionID uint, userID uint) (bool, error)
}

type SubscriptionProductLookup interface {
	FindByIDForUser(productID uint, userID uint) (models.Product, error)
}

type SubscriptionInput struct {
	ProductID uint
	Plan      schedule.RawPlan
}

// SubscriptionView is a subscription with its schedule evaluated for display.
// Issues lists what had to be recovered when the stored schedule was malformed.
type SubscriptionView struct {
	models.Subscription
	NextDue     time.Time `json:"-"`
	NextDueText string    `json:"next_due"`
	Schedule    string    `json:"schedule"`
	Issues      []string  `json:"issues,omitempty"`
}

type SubscriptionService struct {
	subscriptions SubscriptionRepository
	products      SubscriptionProductLookup
	logger        *zap.Logger
}

func NewSubscriptionService(subscriptions SubscriptionRepository, products SubscriptionProductLookup, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{subscriptions: subscriptions, products: products, logger: logger}
}

func (service *SubscriptionService) Create(userID uint, input SubscriptionInput, now time.Time) (models.Subscription, error) {
	product, err := service.products.FindByIDForUser(input.ProductID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subscription{}, ErrSubscriptionProductNotFound
		}
		return models.Subscription{}, err
	}

	plan, err := parseSubscriptionPlan(input.Plan)
	if err != nil {
		return models.Subscription{}, err
	}

	subscription := models.Subscription{
		UserID:    userID,
		ProductID: product.ID,
		IsActive:  true,
	}
	subscription.ApplyPlan(plan)
	nextDue := plan.NextDue(now)
	subscription.NextDueDate = &nextDue

	if err := service.subscriptions.Create(&subscription); err != nil {
		return models.Subscription{}, err
	}
	subscription.Product = product
	return subscription, nil
}

// Update replaces the schedule. The product of a subscription never changes.
func (service *SubscriptionService) Update(userID uint, subscriptionID uint, plan schedule.RawPlan, now time.Time) (models.Subscription, error) {
	subscription, err := service.find(userID, subscriptionID)
	if err != nil {
		return models.Subscription{}, err
	}

	parsed, err := parseSubscriptionPlan(plan)
	if err != nil {
		return models.Subscription{}, err
	}

	subscription.ApplyPlan(parsed)
	nextDue := parsed.NextDue(now)
	subscription.NextDueDate = &nextDue
	if err := service.subscriptions.Save(&subscription); err != nil {
		return models.Subscription{}, err
	}
	return subscription, nil
}

// ListForUser evaluates every subscription of the user against now and
// writes back stored next due dates that have fallen behind.
func (service *SubscriptionService) ListForUser(userID uint, now time.Time) ([]SubscriptionView, error) {
	subscriptions, err := service.subscriptions.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	views := make([]SubscriptionView, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		view := service.evaluate(subscription, now)
		views = append(views, view)

		if len(view.Issues) > 0 || subscription.NextDueEquals(view.NextDue) {
			continue
		}
		if err := service.subscriptions.UpdateNextDueDate(subscription.ID, view.NextDue); err != nil {
			service.logger.Warn("next due write-back failed", zap.Uint("subscription_id", subscription.ID), zap.Error(err))
			continue
		}
		nextDue := view.NextDue
		views[len(views)-1].NextDueDate = &nextDue
	}
	return views, nil
}

func (service *SubscriptionService) evaluate(subscription models.Subscription, now time.Time) SubscriptionView {
	plan, recovered := schedule.ParsePlanLenient(subscription.RawPlan(), now)
	nextDue := plan.NextDue(now)

	view := SubscriptionView{
		Subscription: subscription,
		NextDue:      nextDue,
		NextDueText:  schedule.FormatDate(nextDue),
		Schedule:     describePlan(plan),
	}
	for _, issue := range recovered {
		view.Issues = append(view.Issues, issue.Error())
	}
	if len(recovered) > 0 {
		service.logger.Warn("malformed subscription schedule",
			zap.Uint("subscription_id", subscription.ID),
			zap.Stringer("raw", subscription.RawPlan()),
			zap.Errors("issues", recovered),
		)
	}
	return view
}

// SetActive pauses or resumes a subscription. Pausing keeps the stored next
// due date; resuming recomputes it.
func (service *SubscriptionService) SetActive(userID uint, subscriptionID uint, active bool, now time.Time) (models.Subscription, error) {
	updated, err := service.subscriptions.SetActive(subscriptionID, userID, active)
	if err != nil {
		return models.Subscription{}, err
	}
	if !updated {
		return models.Subscription{}, ErrSubscriptionNotFound
	}

	subscription, err := service.find(userID, subscriptionID)
	if err != nil {
		return models.Subscription{}, err
	}
	if !active {
		return subscription, nil
	}

	plan, err := subscription.SchedulePlan()
	if err != nil {
		return subscription, nil
	}
	nextDue := plan.NextDue(now)
	if !subscription.NextDueEquals(nextDue) {
		if err := service.subscriptions.UpdateNextDueDate(subscription.ID, nextDue); err != nil {
			return models.Subscription{}, err
		}
		subscription.NextDueDate = &nextDue
	}
	return subscription, nil
}

func (service *SubscriptionService) Delete(userID uint, subscriptionID uint) error {
	deleted, err := service.subscriptions.DeleteForUser(subscriptionID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSubscriptionNotFound
	}
	return nil
}

// DuePreview lists the user's subscriptions that fall due on target.
func (service *SubscriptionService) DuePreview(userID uint, target time.Time, now time.Time) (schedule.Selection[models.Subscription], error) {
	subscriptions, err := service.subscriptions.ListByUser(userID)
	if err != nil {
		return schedule.Selection[models.Subscription]{}, err
	}
	return schedule.SelectDue(subscriptions, target, now), nil
}

func (service *SubscriptionService) find(userID uint, subscriptionID uint) (models.Subscription, error) {
	subscription, err := service.subscriptions.FindByIDForUser(subscriptionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}
		return models.Subscription{}, err
	}
	return subscription, nil
}

func parseSubscriptionPlan(raw schedule.RawPlan) (schedule.Plan, error) {
	plan, err := schedule.ParsePlan(raw)
	if err != nil {
		return schedule.Plan{}, fmt.Errorf("%w: %w", ErrSubscriptionInvalidSchedule, err)
	}
	return plan, nil
}

func describePlan(plan schedule.Plan) string {
	description := plan.Frequency.String()
	if plan.Constraint.Kind != schedule.ConstraintNone {
		description += ", " + plan.Constraint.String()
	}
	return description
}
