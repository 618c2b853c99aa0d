// Package account handles registration and credential checks. Unlike the
// lenient storage normalizers, registration validates strictly: bad input
// here is an error, not something to clamp.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"campusmate/api/internal/rbac"
	"campusmate/api/internal/store"
)

var (
	ErrInvalidUSN         = errors.New("usn must match the institutional format (e.g. 1BM24CS001)")
	ErrInvalidEmail       = errors.New("email must use the institutional domain")
	ErrWeakPassword       = errors.New("password must be at least 8 characters with an uppercase letter, a lowercase letter, a digit, and a symbol")
	ErrMissingFields      = errors.New("username, name, and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// One digit, two letters, two digits, two letters, three digits.
var usnPattern = regexp.MustCompile(`^[0-9][A-Za-z]{2}[0-9]{2}[A-Za-z]{2}[0-9]{3}$`)

const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

type Service struct {
	users       *store.Users
	emailDomain string
}

func NewService(users *store.Users, emailDomain string) *Service {
	return &Service{users: users, emailDomain: emailDomain}
}

type RegisterRequest struct {
	Username string
	Password string
	Role     string
	Name     string
	USN      string
	Email    string
}

// Register validates the request, hashes the password, and stores the
// account. Duplicate usernames and USNs surface as store errors.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (store.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.USN = strings.TrimSpace(req.USN)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Name == "" || req.Password == "" {
		return store.User{}, ErrMissingFields
	}
	if req.USN != "" && !usnPattern.MatchString(req.USN) {
		return store.User{}, ErrInvalidUSN
	}
	if req.Email != "" && !strings.HasSuffix(strings.ToLower(req.Email), strings.ToLower(s.emailDomain)) {
		return store.User{}, ErrInvalidEmail
	}
	if !ValidPassword(req.Password) {
		return store.User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := store.User{
		Username: req.Username,
		Password: string(hash),
		Role:     string(rbac.Normalize(req.Role)),
		Name:     req.Name,
		USN:      req.USN,
		Email:    req.Email,
	}
	if err := s.users.Add(ctx, user); err != nil {
		return store.User{}, err
	}
	return user, nil
}

// Login verifies credentials. Accounts created here carry bcrypt hashes;
// records restored from old exports may still hold plaintext, which is
// accepted verbatim until the user re-registers.
func (s *Service) Login(ctx context.Context, username, password string) (store.User, error) {
	user, ok := s.users.GetByUsername(ctx, username)
	if !ok {
		return store.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil {
		return user, nil
	}
	if !looksHashed(user.Password) && user.Password == password {
		return user, nil
	}
	return store.User{}, ErrInvalidCredentials
}

// ValidPassword enforces the institutional password policy.
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func looksHashed(password string) bool {
	return strings.HasPrefix(password, "$2a$") ||
		strings.HasPrefix(password, "$2b$") ||
		strings.HasPrefix(password, "$2y$")
}
