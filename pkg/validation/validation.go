package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// PhoneRegex accepts digits with optional leading + and common separators
	PhoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)

	// IDRegex matches identifiers generated by the stores
	IDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxCommentLength     = 5000
	MaxTags              = 50
)

// ValidateEmail validates email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword validates password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > 72 {
		return fmt.Errorf("password is too long (max 72 bytes)")
	}
	return nil
}

func ValidateChannelName(name string) error {
	if err := ValidateNonEmptyString(name, "channel name"); err != nil {
		return err
	}
	return ValidateStringLength(strings.TrimSpace(name), 1, 100, "channel name")
}

// ValidatePhone accepts an empty phone; a non-empty one must look like a number.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if !PhoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone format")
	}
	return nil
}

// ValidateID validates a path identifier
func ValidateID(id, fieldName string) error {
	if id == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if !IDRegex.MatchString(id) {
		return fmt.Errorf("invalid %s format", fieldName)
	}
	return nil
}

func ValidateTitle(title string) error {
	if err := ValidateNonEmptyString(title, "title"); err != nil {
		return err
	}
	return ValidateStringLength(title, 1, MaxTitleLength, "title")
}

func ValidateDescription(description string) error {
	return ValidateStringLength(description, 0, MaxDescriptionLength, "description")
}

func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("too many tags (max %d)", MaxTags)
	}
	for _, t := range tags {
		if err := ValidateStringLength(t, 1, 50, "tag"); err != nil {
			return err
		}
	}
	return nil
}

func ValidateCommentText(text string) error {
	if err := ValidateNonEmptyString(text, "comment text"); err != nil {
		return err
	}
	return ValidateStringLength(text, 1, MaxCommentLength, "comment text")
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length in runes
func ValidateStringLength(s string, min, max int, fieldName string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
