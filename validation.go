package auth

import (
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes
	maxPasswordBytes = 72
)

// StrongPassword requires a lowercase letter, an uppercase letter,
// a digit and a symbol.
var StrongPassword = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	if len(s) > maxPasswordBytes {
		return validation.NewError("validation_password_too_long", "password is too long")
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	if !lower || !upper || !digit || !symbol {
		return validation.NewError(
			"validation_password_weak",
			"password must have an uppercase letter, a lowercase letter, a number and a symbol",
		)
	}
	return nil
})

// RegisterUserMessage is the registration payload
type RegisterUserMessage struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	FullName string `json:"fullName" form:"fullName"`
}

func (r RegisterUserMessage) Type() string {
	return "auth.user.register"
}

// Validate checks field formats. Failures carry a field map.
func (r RegisterUserMessage) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password,
			validation.Required,
			validation.RuneLength(minPasswordLength, 0),
			StrongPassword,
		),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 0)),
	))
}

// LoginMessage is the login payload
type LoginMessage struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate only checks shape, credential problems are reported as
// ErrUnauthorized by Login.
func (l LoginMessage) Validate() error {
	l.Email = strings.TrimSpace(l.Email)
	return validationError(validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required, is.EmailFormat),
		validation.Field(&l.Password, validation.Required),
	))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, "invalid input").
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest)
}
