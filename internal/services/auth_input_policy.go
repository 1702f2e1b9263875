package services

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

var (
	ErrAuthCredentialsInvalid  = errors.New("auth credentials invalid")
	ErrAuthRegistrationInvalid = errors.New("auth registration invalid")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

// NormalizeUsername returns "" for names outside 3-32 letters, digits, dots,
// dashes and underscores.
func NormalizeUsername(raw string) string {
	username := strings.TrimSpace(raw)
	if !usernamePattern.MatchString(username) {
		return ""
	}
	return username
}

// NormalizeCredentialsInput accepts a username or an email as the login.
func NormalizeCredentialsInput(loginRaw string, passwordRaw string) (string, string, error) {
	login := strings.TrimSpace(loginRaw)
	if strings.Contains(login, "@") {
		login = NormalizeAuthEmail(login)
	}
	password := strings.TrimSpace(passwordRaw)
	if login == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return login, password, nil
}

type RegistrationInput struct {
	Username string
	Email    string
	Password string
}

func NormalizeRegistrationInput(input RegistrationInput) (RegistrationInput, error) {
	normalized := RegistrationInput{
		Username: NormalizeUsername(input.Username),
		Email:    NormalizeAuthEmail(input.Email),
		Password: strings.TrimSpace(input.Password),
	}
	if normalized.Username == "" || normalized.Email == "" || normalized.Password == "" {
		return RegistrationInput{}, ErrAuthRegistrationInvalid
	}
	if err := ValidatePasswordStrength(normalized.Password); err != nil {
		return RegistrationInput{}, err
	}
	return normalized, nil
}
