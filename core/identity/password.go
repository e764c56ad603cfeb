package identity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	// password policy
	pwdMinLen    = 8
	pwdMaxSim    = .7
	specialRegex = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMinLenText     = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)
	pwdNoSpaceText    = "password must not contain whitespace"
	pwdNotAllNumText  = "password cannot be entirely numeric"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	pwdAttrSimText    = "password cannot be similar to account attributes"
)

// WeakPasswordError matches ErrWeakPassword.
type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string        { return e.Reason }
func (e *WeakPasswordError) Is(target error) bool { return target == ErrWeakPassword }

func weak(reason string) error { return &WeakPasswordError{Reason: reason} }

// CheckPassword applies the password policy:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no account attrs similarity
func CheckPassword(pwd string, attrs ...string) error {
	var (
		digitCount         int
		hasUpper, hasLower bool
	)

	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		return weak(pwdMinLenText)
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return weak(pwdNoSpaceText)
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		return weak(pwdNotAllNumText)
	}

	if !(hasUpper && hasLower && digitCount > 0 && specialRegex.MatchString(pwd)) {
		return weak(pwdComplexityText)
	}

	for _, attr := range attrs {
		if similarity(pwd, attr) >= pwdMaxSim {
			return weak(pwdAttrSimText)
		}
	}
	return nil
}

func similarity(pwd, attr string) float64 {
	if attr == "" {
		return 0
	}
	return difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
}
