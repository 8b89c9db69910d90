// Package validation implements the field rules applied to user and store input.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrValidationFailed is wrapped by every *Error returned from Validate.
var ErrValidationFailed = errors.New("validation failed")

// Rule names a single field check.
type Rule string

// Rules.
const (
	RuleName     Rule = "name"
	RuleEmail    Rule = "email"
	RulePassword Rule = "password"
	RuleAddress  Rule = "address"
)

// Limits.
const (
	NameMinLength     = 20
	NameMaxLength     = 60
	PasswordMinLength = 8
	PasswordMaxLength = 16
	AddressMaxLength  = 400
)

// SpecialCharacters is the set a password must draw at least one character from.
const SpecialCharacters = "!@#$%^&*(),.?\":{}|<>_-+=~`[]\\/;'"

const passwordStrengthTag = "password_strength"

var messages = map[Rule]string{
	RuleName:     fmt.Sprintf("Name must be between %d and %d characters.", NameMinLength, NameMaxLength),
	RuleEmail:    "Please enter a valid email address.",
	RulePassword: fmt.Sprintf("Password must be %d-%d characters and include at least one uppercase letter and one special character.", PasswordMinLength, PasswordMaxLength),
	RuleAddress:  fmt.Sprintf("Address cannot exceed %d characters.", AddressMaxLength),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(passwordStrengthTag, validatePasswordStrength); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", passwordStrengthTag, err))
	}
	return v
}

// Result is the outcome of a single rule check.
type Result struct {
	Valid   bool
	Message string
}

// Field pairs a rule with the value it should be applied to.
type Field struct {
	Rule  Rule
	Value string
}

// Error describes the first rule that failed.
type Error struct {
	Rule    Rule
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap makes errors.Is(err, ErrValidationFailed) hold.
func (e *Error) Unwrap() error {
	return ErrValidationFailed
}

// Message returns the human readable failure message for rule.
func Message(rule Rule) string {
	if msg, ok := messages[rule]; ok {
		return msg
	}
	return fmt.Sprintf("unknown validation rule %q", rule)
}

// Check applies rule to value.
func Check(rule Rule, value string) Result {
	tag, ok := tagFor(rule)
	if !ok {
		return Result{Message: Message(rule)}
	}
	if err := validate.Var(value, tag); err != nil {
		return Result{Message: Message(rule)}
	}
	return Result{Valid: true}
}

// Validate checks fields in order and returns the first failure as *Error.
func Validate(fields ...Field) error {
	for _, f := range fields {
		if res := Check(f.Rule, f.Value); !res.Valid {
			return &Error{Rule: f.Rule, Message: res.Message}
		}
	}
	return nil
}

func tagFor(rule Rule) (string, bool) {
	switch rule {
	case RuleName:
		return fmt.Sprintf("min=%d,max=%d", NameMinLength, NameMaxLength), true
	case RuleEmail:
		return "required,email", true
	case RulePassword:
		return fmt.Sprintf("min=%d,max=%d,%s", PasswordMinLength, PasswordMaxLength, passwordStrengthTag), true
	case RuleAddress:
		return fmt.Sprintf("max=%d", AddressMaxLength), true
	}
	return "", false
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	var hasUpper, hasSpecial bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case strings.ContainsRune(SpecialCharacters, r):
			hasSpecial = true
		}
	}
	return hasUpper && hasSpecial
}
