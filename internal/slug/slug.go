// Package slug provides workspace slug validation and generation.
// Slugs are the URL-safe unique identifiers for workspaces and are
// immutable once assigned.
package slug

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	gosimple "github.com/gosimple/slug"
)

// Length bounds for workspace slugs.
const (
	MinLength = 3
	MaxLength = 50
)

// Validation errors. The message of the first failing rule is surfaced
// directly to the caller.
var (
	ErrLength       = errors.New("slug must be between 3 and 50 characters")
	ErrFirstChar    = errors.New("slug must start with a lowercase letter")
	ErrLastChar     = errors.New("slug must end with a letter or digit")
	ErrDoubleHyphen = errors.New("slug must not contain consecutive hyphens")
	ErrPattern      = errors.New("slug may only contain lowercase letters, digits, and hyphens")
	ErrReserved     = errors.New("slug is reserved")

	// ErrGenerationExhausted is returned when unique slug generation
	// gives up after the retry budget.
	ErrGenerationExhausted = errors.New("failed to generate a unique slug")
)

// slugPattern is the full-string shape every slug must match.
var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// Reserved contains slugs that cannot be claimed by workspaces.
// These collide with system routes or invite abuse.
var Reserved = map[string]bool{
	"api":       true,
	"admin":     true,
	"www":       true,
	"app":       true,
	"auth":      true,
	"billing":   true,
	"dashboard": true,
	"docs":      true,
	"healthz":   true,
	"readyz":    true,
	"settings":  true,
	"status":    true,
	"support":   true,
	"webhooks":  true,
	"workspace": true,
}

const (
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLength   = 4
	maxAttempts    = 10
)

// Validate checks a candidate slug against all rules, in order, and
// returns the first failure.
func Validate(s string) error {
	if len(s) < MinLength || len(s) > MaxLength {
		return ErrLength
	}
	first := s[0]
	if first < 'a' || first > 'z' {
		return ErrFirstChar
	}
	last := s[len(s)-1]
	if !isLowerAlnum(last) {
		return ErrLastChar
	}
	if strings.Contains(s, "--") {
		return ErrDoubleHyphen
	}
	if !slugPattern.MatchString(s) {
		return ErrPattern
	}
	if Reserved[s] {
		return ErrReserved
	}
	return nil
}

// Make derives a slug from a display name. The result is lowercase with
// non [a-z0-9 space hyphen] characters stripped, whitespace collapsed to
// single hyphens, repeated hyphens collapsed, and leading/trailing
// hyphens trimmed. Make does not guarantee the result passes Validate;
// GenerateUnique handles short or reserved results.
func Make(name string) string {
	s := gosimple.Make(name)

	// gosimple substitutes some punctuation with words and uses
	// underscores for a few inputs; normalize to the slug alphabet.
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteRune('-')
		}
	}
	s = b.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// TakenFunc reports whether a slug is already claimed in storage.
type TakenFunc func(ctx context.Context, slug string) (bool, error)

// GenerateUnique derives a slug from the workspace name and probes
// storage for uniqueness. On collision it appends a random 4-character
// suffix and retries, up to 10 attempts, after which it fails
// permanently.
func GenerateUnique(ctx context.Context, name string, taken TakenFunc) (string, error) {
	base := Make(name)
	if len(base) < MinLength || base[0] < 'a' || base[0] > 'z' || Reserved[base] {
		base = extend(base)
	}
	if len(base) > MaxLength {
		base = strings.Trim(base[:MaxLength], "-")
	}

	candidate := base
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if Validate(candidate) == nil {
			exists, err := taken(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("checking slug availability: %w", err)
			}
			if !exists {
				return candidate, nil
			}
		}

		suffix, err := randomSuffix()
		if err != nil {
			return "", err
		}
		candidate = withSuffix(base, suffix)
	}

	return "", ErrGenerationExhausted
}

// extend pads a too-short or reserved base into a usable one.
func extend(base string) string {
	if base == "" || base[0] < 'a' || base[0] > 'z' {
		return "ws" + base
	}
	return base + "-ws"
}

// withSuffix appends a suffix, keeping the result inside MaxLength.
func withSuffix(base, suffix string) string {
	budget := MaxLength - len(suffix) - 1
	if len(base) > budget {
		base = strings.Trim(base[:budget], "-")
	}
	return base + "-" + suffix
}

// randomSuffix returns suffixLength random lowercase-alphanumeric chars.
func randomSuffix() (string, error) {
	b := make([]byte, suffixLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(suffixAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generating slug suffix: %w", err)
		}
		b[i] = suffixAlphabet[n.Int64()]
	}
	return string(b), nil
}

func isLowerAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
