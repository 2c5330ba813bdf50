package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"coursehub/internal/common"

	"github.com/google/uuid"
)

// NormalizeEmail is the canonical form used for lookups, uniqueness and
// usernames.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return common.Validationf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.Validationf("email %q is not a valid address", email)
	}
	return nil
}

// requireText trims s and enforces 1..max runes. max 0 means unbounded.
func requireText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", common.Validationf("%s is required", field)
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", common.Validationf("%s must be at most %d characters", field, max)
	}
	return s, nil
}

// validUUID reports whether id is a canonical UUID. Path ids that fail this
// check cannot name a row and are reported as missing.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
