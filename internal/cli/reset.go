package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/autobuyer/internal/db"
	"github.com/terraincognita07/autobuyer/internal/models"
	"github.com/terraincognita07/autobuyer/internal/security"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PasswordResetStore interface {
	FindByLogin(login string) (models.User, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

// ResetPassword gives the account identified by login (username or email) a
// temporary password that has to be changed on the next login.
func ResetPassword(users PasswordResetStore, login string) (models.User, string, error) {
	normalizedLogin, _, err := services.NormalizeCredentialsInput(login, "-")
	if err != nil {
		return models.User{}, "", errors.New("username or email is required")
	}

	user, err := users.FindByLogin(normalizedLogin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, "", fmt.Errorf("user %s not found", normalizedLogin)
		}
		return models.User{}, "", fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, err := security.TemporaryPassword(security.MinTemporaryPasswordLength)
	if err != nil {
		return models.User{}, "", fmt.Errorf("generate temporary password: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash temporary password: %w", err)
	}

	if err := users.UpdatePassword(user.ID, string(passwordHash), true); err != nil {
		return models.User{}, "", fmt.Errorf("update user password: %w", err)
	}
	user.PasswordHash = string(passwordHash)
	user.MustChangePassword = true
	return user, temporaryPassword, nil
}

func RunResetPasswordCommand(dbPath string, login string, out io.Writer, logger *zap.Logger) error {
	if strings.TrimSpace(login) == "" {
		return errors.New("usage: autobuyer reset-password <username|email>")
	}

	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	user, temporaryPassword, err := ResetPassword(db.NewUserRepository(database), login)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Password reset for %s <%s>\n", user.Username, user.Email)
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "The password must be changed on next login.")
	return nil
}

func RunGenerateSecretCommand(out io.Writer) error {
	secret, err := security.SecretKey()
	if err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	_, err = fmt.Fprintf(out, "SECRET_KEY=%s\n", secret)
	return err
}
