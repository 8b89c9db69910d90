package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value string
		valid bool
	}{
		{"short name", RuleName, "John Doe", false},
		{"name at min length", RuleName, "Abcdefghij Klmnopqrs", true},
		{"name at max length", RuleName, strings.Repeat("a", NameMaxLength), true},
		{"name over max length", RuleName, strings.Repeat("a", NameMaxLength+1), false},
		{"multibyte name counts runes", RuleName, strings.Repeat("é", NameMinLength), true},
		{"valid email", RuleEmail, "user@example.com", true},
		{"email without domain", RuleEmail, "user@", false},
		{"empty email", RuleEmail, "", false},
		{"password without upper or special", RulePassword, "abc12345", false},
		{"password with upper and special", RulePassword, "Abc12345!", true},
		{"password without special", RulePassword, "Abc123456", false},
		{"password without upper", RulePassword, "abc12345!", false},
		{"password too short", RulePassword, "Ab1!", false},
		{"password too long", RulePassword, "Abcdefghijklmno1!", false},
		{"password with underscore", RulePassword, "Password_1", true},
		{"empty address", RuleAddress, "", true},
		{"address at max length", RuleAddress, strings.Repeat("x", AddressMaxLength), true},
		{"address over max length", RuleAddress, strings.Repeat("x", AddressMaxLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(tt.rule, tt.value)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.valid {
				assert.Empty(t, res.Message)
			} else {
				assert.Equal(t, Message(tt.rule), res.Message)
			}
		})
	}
}

func TestCheck_UnknownRule(t *testing.T) {
	res := Check(Rule("zipcode"), "12345")

	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "zipcode")
}

func TestValidate_FirstFailureWins(t *testing.T) {
	err := Validate(
		Field{Rule: RuleName, Value: "Johnathan Doe Registered User"},
		Field{Rule: RuleEmail, Value: "not-an-email"},
		Field{Rule: RulePassword, Value: "weak"},
	)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))

	var vErr *Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, RuleEmail, vErr.Rule)
	assert.Equal(t, "Please enter a valid email address.", vErr.Error())
}

func TestValidate_AllPass(t *testing.T) {
	err := Validate(
		Field{Rule: RuleName, Value: "Johnathan Doe Registered User"},
		Field{Rule: RuleEmail, Value: "john@example.com"},
		Field{Rule: RulePassword, Value: "Secret#123"},
		Field{Rule: RuleAddress, Value: "456 User Ave, Consumer Town, 12345"},
	)

	assert.NoError(t, err)
}
