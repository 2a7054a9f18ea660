package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxCharField is the length limit of every short text column.
const MaxCharField = 255

// Messages returned to API clients in field error maps.
const (
	MsgRequired     = "This field is required."
	MsgBlank        = "This field may not be blank."
	MsgMaxLength    = "Ensure this field has no more than %d characters."
	MsgInvalidInt   = "A valid integer is required."
	MsgMinValue     = "Ensure this value is greater than or equal to %d."
	MsgMaxValue     = "Ensure this value is less than or equal to %d."
	MsgInvalidPk    = "Invalid pk \"%s\" - object does not exist."
	MsgIncorrectPk  = "Incorrect type. Expected pk value, received %s."
	MsgInvalidEmail = "Enter a valid email address."
	MsgInvalidDate  = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgNoFile       = "No file was submitted."
	MsgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgFileTooLarge = "The submitted file is too large (max %d MB)."
)

// MaxLength returns the length message when value has more than n runes.
func MaxLength(value string, n int) string {
	if utf8.RuneCountInString(value) > n {
		return fmt.Sprintf(MsgMaxLength, n)
	}
	return ""
}

// RequiredText validates a required, non-blank short text field.
func RequiredText(value string) string {
	if strings.TrimSpace(value) == "" {
		return MsgBlank
	}
	return MaxLength(value, MaxCharField)
}

// IntRange returns the bound message when v is outside [lo, hi].
func IntRange(v, lo, hi int) string {
	if v < lo {
		return fmt.Sprintf(MsgMinValue, lo)
	}
	if v > hi {
		return fmt.Sprintf(MsgMaxValue, hi)
	}
	return ""
}

// InvalidPk formats the unknown related object message.
func InvalidPk(id any) string {
	return fmt.Sprintf(MsgInvalidPk, fmt.Sprint(id))
}
