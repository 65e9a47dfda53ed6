package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/entities"
	"github.com/mrlokans/jobportal/internal/notify"
	"github.com/mrlokans/jobportal/internal/validation"
)

// User-facing validation messages.
const (
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidEmail        = "Invalid email format"
	MsgAllFieldsRequired   = "All fields are required"
	MsgInvalidPhone        = "Invalid phone number format"
	MsgInvalidUsername     = "Username must be 3-20 characters, alphanumeric with underscores"
	MsgPasswordPolicy      = "Password does not meet requirements: "
	MsgPasswordMismatch    = "Passwords do not match"
	MsgInvalidRole         = "Invalid role"
)

// Post-login destinations.
const (
	DefaultDestination  = "/dashboard"
	EmployerDestination = "/employer/dashboard"
	AdminDestination    = "/admin/dashboard"
)

var destinations = map[entities.Role]string{
	entities.RoleAdmin:    AdminDestination,
	entities.RoleEmployer: EmployerDestination,
}

// DestinationFor returns where a principal with role lands after login.
func DestinationFor(role entities.Role) string {
	if dest, ok := destinations[role]; ok {
		return dest
	}
	return DefaultDestination
}

// PrincipalStore is the persistence the auth flow depends on.
type PrincipalStore interface {
	// FindPrincipalByEmail returns (nil, nil) when no principal has email.
	FindPrincipalByEmail(ctx context.Context, email string) (*entities.Principal, error)
	// CreatePrincipal returns false when username or email is already taken.
	CreatePrincipal(ctx context.Context, p *entities.Principal) (bool, error)
}

// Service implements the login and registration use cases.
type Service struct {
	store    PrincipalStore
	notifier notify.Notifier
	hasher   *Hasher
	policy   PasswordPolicy
	logger   *slog.Logger
}

// NewService creates a new authentication service.
func NewService(store PrincipalStore, notifier notify.Notifier, hasher *Hasher, policy PasswordPolicy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		hasher:   hasher,
		policy:   policy,
		logger:   logger,
	}
}

// Policy returns the password policy registrations are checked against.
func (s *Service) Policy() PasswordPolicy {
	return s.policy
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Principal   *entities.Principal
	Destination string
}

// Login checks credentials. Unknown email and wrong password fail with the same
// authentication error so callers cannot tell which factor was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !validation.IsNotBlank(email) || !validation.IsNotBlank(password) {
		return nil, apperrors.Validation(MsgCredentialsRequired)
	}
	if !validation.IsValidEmail(email) {
		return nil, apperrors.Validation(MsgInvalidEmail)
	}
	email = validation.SanitizeForHTML(strings.TrimSpace(email))

	principal, err := s.store.FindPrincipalByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to look up principal", "email", email, "error", err)
		return nil, apperrors.Technical(err, "find principal by email")
	}
	if principal == nil {
		s.logger.Warn("login failed", "email", email, "reason", "unknown email")
		return nil, apperrors.Authentication("unknown email")
	}
	if !s.hasher.Verify(password, principal.PasswordHash) {
		s.logger.Warn("login failed", "email", email, "reason", "password mismatch")
		return nil, apperrors.Authentication("password mismatch")
	}

	s.logger.Info("login succeeded", "principal_id", principal.ID, "role", principal.Role)
	return &LoginResult{
		Principal:   principal,
		Destination: DestinationFor(principal.Role),
	}, nil
}

// RegistrationRequest holds the raw registration form fields.
type RegistrationRequest struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	FullName        string
	Phone           string
	Address         string
}

func (r RegistrationRequest) complete() bool {
	for _, field := range []string{r.Username, r.Password, r.ConfirmPassword, r.Email, r.FullName, r.Phone, r.Address} {
		if !validation.IsNotBlank(field) {
			return false
		}
	}
	return true
}

func (s *Service) validateRegistration(req RegistrationRequest) error {
	switch {
	case !req.complete():
		return apperrors.Validation(MsgAllFieldsRequired)
	case !validation.IsValidEmail(req.Email):
		return apperrors.Validation(MsgInvalidEmail)
	case !validation.IsValidPhone(req.Phone):
		return apperrors.Validation(MsgInvalidPhone)
	case !validation.IsValidUsername(req.Username):
		return apperrors.Validation(MsgInvalidUsername)
	case !s.policy.IsValid(req.Password):
		return apperrors.Validation(MsgPasswordPolicy + s.policy.Describe())
	case req.Password != req.ConfirmPassword:
		return apperrors.Validation(MsgPasswordMismatch)
	}
	return nil
}

func sanitize(s string) string {
	return validation.SanitizeForHTML(strings.TrimSpace(s))
}

// Register enrolls a new student. Validation failures come back as validation
// errors; a duplicate or a storage failure as a retryable registration error.
// The welcome email is best effort and never fails the registration.
func (s *Service) Register(ctx context.Context, req RegistrationRequest) (*entities.Principal, error) {
	principal, err := s.enroll(ctx, req, entities.RoleStudent)
	if err != nil {
		return nil, err
	}

	if !s.notifier.Send(ctx, principal.Email, notify.WelcomeSubject, notify.WelcomeBody(principal.FullName, string(principal.Role))) {
		s.logger.Warn("welcome email not sent", "principal_id", principal.ID, "email", principal.Email)
	}
	return principal, nil
}

// CreatePrincipal enrolls a principal with an explicit role and sends no email.
// It backs the administrative create-user command.
func (s *Service) CreatePrincipal(ctx context.Context, req RegistrationRequest, role entities.Role) (*entities.Principal, error) {
	if !validation.IsValidRole(string(role)) {
		return nil, apperrors.Validation(MsgInvalidRole)
	}
	return s.enroll(ctx, req, role)
}

func (s *Service) enroll(ctx context.Context, req RegistrationRequest, role entities.Role) (*entities.Principal, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	principal := &entities.Principal{
		Username:     sanitize(req.Username),
		Email:        sanitize(req.Email),
		PasswordHash: hash,
		Role:         role,
		FullName:     sanitize(req.FullName),
		Phone:        sanitize(req.Phone),
		Address:      sanitize(req.Address),
	}

	created, err := s.store.CreatePrincipal(ctx, principal)
	if err != nil {
		s.logger.Error("failed to store principal", "username", principal.Username, "error", err)
		return nil, apperrors.Registration(err)
	}
	if !created {
		s.logger.Warn("registration rejected", "username", principal.Username, "reason", "duplicate")
		return nil, apperrors.Registration(nil)
	}

	s.logger.Info("principal registered", "principal_id", principal.ID, "username", principal.Username, "role", role)
	return principal, nil
}
