package edgar

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	VERSION = "0.3.0"

	// SecEmailEnvVar is the environment variable name for SEC email
	SecEmailEnvVar = "SEC_EMAIL"
)

var secEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// GetSecEmail retrieves the contact email SEC requires in every request's
// User-Agent header, from the environment or an error if unset/invalid.
func GetSecEmail() (string, error) {
	email := os.Getenv(SecEmailEnvVar)
	if email == "" {
		return "", fmt.Errorf("SEC email required: set %s environment variable or use --email flag", SecEmailEnvVar)
	}
	if !secEmailRegex.MatchString(email) {
		return "", fmt.Errorf("invalid email format: %s", email)
	}
	if strings.HasSuffix(email, "example.com") {
		return "", fmt.Errorf("use a real email address, not example.com: %s", email)
	}
	return email, nil
}

// BuildUserAgent creates a proper SEC User-Agent string.
func BuildUserAgent(email string) string {
	return fmt.Sprintf("go-edgar/%s (%s)", VERSION, email)
}
