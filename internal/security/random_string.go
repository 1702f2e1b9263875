package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"unicode"
)

const (
	// Ambiguous glyphs (0/O, 1/l/I) are left out so passwords can be read aloud.
	passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	secretAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	MinTemporaryPasswordLength = 12
	SecretKeyLength            = 48
)

var (
	ErrNegativeLength = errors.New("length must be non-negative")
	ErrEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString draws length characters uniformly from alphabet using crypto/rand.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", ErrNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if alphabet == "" {
		return "", ErrEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for builder.Len() < length {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[position.Int64()])
	}
	return builder.String(), nil
}

// TemporaryPassword returns a password of at least MinTemporaryPasswordLength
// characters that contains both a letter and a digit.
func TemporaryPassword(length int) (string, error) {
	if length < MinTemporaryPasswordLength {
		length = MinTemporaryPasswordLength
	}
	for {
		candidate, err := RandomString(length, passwordAlphabet)
		if err != nil {
			return "", err
		}
		if hasLetterAndDigit(candidate) {
			return candidate, nil
		}
	}
}

// SecretKey returns a value suitable for SECRET_KEY.
func SecretKey() (string, error) {
	return RandomString(SecretKeyLength, secretAlphabet)
}

func hasLetterAndDigit(value string) bool {
	hasLetter := strings.IndexFunc(value, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(value, unicode.IsDigit) >= 0
	return hasLetter && hasDigit
}
