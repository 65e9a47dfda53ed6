package auth

import (
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/config"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// bcrypt has a 72-byte limit
const maxPasswordBytes = 72

// specialChars is the set counted as "special" by the password policy.
const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var (
	ErrPasswordRequired = apperrors.Validation("Password cannot be empty")
	ErrPasswordTooLong  = apperrors.Validation("Password exceeds maximum length of 72 bytes")
)

// Hasher produces and checks salted bcrypt hashes.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given cost, falling back to
// DefaultBcryptCost when cost is outside bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash. Two calls with the same password differ.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", apperrors.Technical(err, "hash password")
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. It never errors:
// empty input and malformed hashes simply do not match.
func (h *Hasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// PasswordPolicy describes the strength rules applied at registration.
type PasswordPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPasswordPolicy requires 8 characters with upper, lower and digit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:    8,
		RequireUpper: true,
		RequireLower: true,
		RequireDigit: true,
	}
}

// PolicyFromConfig builds a policy from the password settings.
func PolicyFromConfig(cfg config.Password) PasswordPolicy {
	return PasswordPolicy{
		MinLength:      cfg.MinLength,
		RequireUpper:   cfg.RequireUppercase,
		RequireLower:   cfg.RequireLowercase,
		RequireDigit:   cfg.RequireDigit,
		RequireSpecial: cfg.RequireSpecial,
	}
}

type passwordTraits struct {
	upper, lower, digit, special bool
}

// classify only counts ASCII letters and digits; accented or non-Latin
// characters satisfy none of the class rules.
func classify(password string) passwordTraits {
	var t passwordTraits
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			t.upper = true
		case 'a' <= r && r <= 'z':
			t.lower = true
		case '0' <= r && r <= '9':
			t.digit = true
		case strings.ContainsRune(specialChars, r):
			t.special = true
		}
	}
	return t
}

// IsValid reports whether password satisfies every enabled rule.
func (p PasswordPolicy) IsValid(password string) bool {
	if password == "" || len([]rune(password)) < p.MinLength {
		return false
	}
	t := classify(password)
	if p.RequireUpper && !t.upper {
		return false
	}
	if p.RequireLower && !t.lower {
		return false
	}
	if p.RequireDigit && !t.digit {
		return false
	}
	if p.RequireSpecial && !t.special {
		return false
	}
	return true
}

// Describe renders the policy as a sentence, listing only enabled rules.
func (p PasswordPolicy) Describe() string {
	var b strings.Builder
	b.WriteString("Password must be at least ")
	b.WriteString(strconv.Itoa(p.MinLength))
	b.WriteString(" characters")

	var parts []string
	if p.RequireUpper {
		parts = append(parts, "uppercase letters")
	}
	if p.RequireLower {
		parts = append(parts, "lowercase letters")
	}
	if p.RequireDigit {
		parts = append(parts, "numbers")
	}
	if p.RequireSpecial {
		parts = append(parts, "special characters")
	}
	if len(parts) > 0 {
		b.WriteString(", contain ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}
