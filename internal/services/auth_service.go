package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/autobuyer/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAuthUserExists             = errors.New("auth user exists")
	ErrAuthUserNotFound           = errors.New("auth user not found")
	ErrAuthPasswordMismatch       = errors.New("auth password mismatch")
	ErrAuthInvalidCurrentPassword = errors.New("auth invalid current password")
	ErrAuthNewPasswordMustDiffer  = errors.New("auth new password must differ")
	ErrAuthPasswordChangeInvalid  = errors.New("auth password change invalid input")
)

type AuthUserRepository interface {
	ExistsByUsernameOrEmail(username string, email string) (bool, error)
	FindByLogin(login string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
	cost  int
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

func (service *AuthService) Register(input RegistrationInput, now time.Time) (models.User, error) {
	normalized, err := NormalizeRegistrationInput(input)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByUsernameOrEmail(normalized.Username, normalized.Email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrAuthUserExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(normalized.Password), service.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     normalized.Username,
		Email:        normalized.Email,
		PasswordHash: string(passwordHash),
		CreatedAt:    now.UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) Authenticate(loginRaw string, passwordRaw string) (models.User, error) {
	login, password, err := NormalizeCredentialsInput(loginRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByLogin(login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) ValidatePasswordChange(passwordHash string, currentPassword string, newPassword string, confirmPassword string) error {
	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrAuthPasswordChangeInvalid
	}
	if newPassword != confirmPassword {
		return ErrAuthPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(currentPassword)) != nil {
		return ErrAuthInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrAuthNewPasswordMustDiffer
	}
	return ValidatePasswordStrength(newPassword)
}

func (service *AuthService) ChangePassword(userID uint, currentPassword string, newPassword string, confirmPassword string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	if err := service.ValidatePasswordChange(user.PasswordHash, currentPassword, newPassword, confirmPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(newPassword)), service.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.users.UpdatePassword(userID, string(passwordHash), false)
}
