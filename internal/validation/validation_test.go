package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "testpass123", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Too Short", "pw", true},
		{"Too Long", strings.Repeat("a", 129), true},
		{"Numeric", "1234567890", true},
		{"Symbols Only", "!!!!!!!!!!", true},
		{"Common", "Password1", true},
		{"Unicode Characters", "Ångström-pass", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "chef.remy_1", false},
		{"Blank", "", false},
		{"Illegal Chars", "user@123", true},
		{"Spaces", "two words", true},
		{"Too Long", strings.Repeat("u", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Test@example.com", NormalizeEmail("  Test@EXAMPLE.COM "))
	assert.Equal(t, "nodomain", NormalizeEmail("nodomain"))

	assert.NoError(t, ValidateEmail("cook@example.com"))
	assert.EqualError(t, ValidateEmail(""), MsgRequired)
	assert.EqualError(t, ValidateEmail("not-an-email"), MsgInvalidEmail)
	assert.EqualError(t, ValidateEmail("Cook <cook@example.com>"), MsgInvalidEmail)
	assert.EqualError(t, ValidateEmail("cook@localhost"), MsgInvalidEmail)
}

func TestFieldHelpers(t *testing.T) {
	t.Parallel()
	assert.Empty(t, RequiredText("Vegan"))
	assert.Equal(t, MsgBlank, RequiredText("   "))
	assert.Equal(t, "Ensure this field has no more than 255 characters.", RequiredText(strings.Repeat("x", 256)))
	assert.Empty(t, MaxLength(strings.Repeat("é", 255), 255))

	assert.Empty(t, IntRange(3, 1, 5))
	assert.Equal(t, "Ensure this value is greater than or equal to 1.", IntRange(0, 1, 5))
	assert.Equal(t, "Ensure this value is less than or equal to 5.", IntRange(6, 1, 5))

	assert.Equal(t, `Invalid pk "42" - object does not exist.`, InvalidPk(uint(42)))
}
