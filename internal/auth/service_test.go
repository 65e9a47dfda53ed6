package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/entities"
	"github.com/mrlokans/jobportal/internal/logging"
	"github.com/mrlokans/jobportal/internal/notify"
)

// memoryStore is an in-memory PrincipalStore enforcing unique username and email.
type memoryStore struct {
	mu         sync.Mutex
	principals []*entities.Principal
	findErr    error
	createErr  error
}

func (m *memoryStore) FindPrincipalByEmail(_ context.Context, email string) (*entities.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, p := range m.principals {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) CreatePrincipal(_ context.Context, p *entities.Principal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return false, m.createErr
	}
	for _, existing := range m.principals {
		if existing.Username == p.Username || existing.Email == p.Email {
			return false, nil
		}
	}
	p.ID = uint(len(m.principals) + 1)
	cp := *p
	m.principals = append(m.principals, &cp)
	return true, nil
}

type sentMail struct {
	to, subject, body string
}

// fakeNotifier records every send attempt.
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMail
	result bool
}

func (f *fakeNotifier) Send(_ context.Context, to, subject, htmlBody string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, subject, htmlBody})
	return f.result
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestService() (*Service, *memoryStore, *fakeNotifier) {
	store := &memoryStore{}
	notifier := &fakeNotifier{result: true}
	svc := NewService(store, notifier, NewHasher(testBcryptCost), DefaultPasswordPolicy(), logging.Discard())
	return svc, store, notifier
}

func validRegistration() RegistrationRequest {
	return RegistrationRequest{
		Username:        "nimal_p",
		Password:        "Passw0rdX",
		ConfirmPassword: "Passw0rdX",
		Email:           "nimal@example.com",
		FullName:        "Nimal Perera",
		Phone:           "077-123-4567",
		Address:         "12 Galle Road, Colombo",
	}
}

func assertValidation(t *testing.T, err error, msg string) {
	t.Helper()
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v (%s)", err, apperrors.KindOf(err))
	}
	if got := apperrors.PublicMessage(err); got != msg {
		t.Errorf("message = %q, want %q", got, msg)
	}
}

func TestService_Register(t *testing.T) {
	svc, store, notifier := newTestService()

	principal, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if principal.Role != entities.RoleStudent {
		t.Errorf("role = %q, want student", principal.Role)
	}
	if principal.PasswordHash == "" || principal.PasswordHash == "Passw0rdX" {
		t.Error("stored password must be a hash")
	}
	if len(store.principals) != 1 {
		t.Fatalf("expected 1 stored principal, got %d", len(store.principals))
	}

	if notifier.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", notifier.count())
	}
	mail := notifier.sent[0]
	if mail.to != "nimal@example.com" || mail.subject != notify.WelcomeSubject {
		t.Errorf("unexpected notification %+v", mail)
	}
	if !strings.Contains(mail.body, "Dear Nimal Perera,") || !strings.Contains(mail.body, "<strong>student</strong>") {
		t.Errorf("unexpected welcome body %q", mail.body)
	}
}

func TestService_Register_Sanitizes(t *testing.T) {
	svc, _, notifier := newTestService()

	req := validRegistration()
	req.FullName = "  <b>Nimal</b> & Co  "
	req.Address = ` 1 "Main" St `

	principal, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if principal.FullName != "&lt;b&gt;Nimal&lt;/b&gt; &amp; Co" {
		t.Errorf("FullName = %q", principal.FullName)
	}
	if principal.Address != "1 &#34;Main&#34; St" {
		t.Errorf("Address = %q", principal.Address)
	}
	if strings.Contains(notifier.sent[0].body, "<b>Nimal") {
		t.Error("welcome email must carry the sanitized name")
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc, store, notifier := newTestService()

	tests := []struct {
		name   string
		mutate func(*RegistrationRequest)
		want   string
	}{
		{"missing username", func(r *RegistrationRequest) { r.Username = "" }, MsgAllFieldsRequired},
		{"blank address", func(r *RegistrationRequest) { r.Address = "   " }, MsgAllFieldsRequired},
		{"missing confirmation", func(r *RegistrationRequest) { r.ConfirmPassword = "" }, MsgAllFieldsRequired},
		{"bad email", func(r *RegistrationRequest) { r.Email = "nimal.example.com" }, MsgInvalidEmail},
		{"bad phone", func(r *RegistrationRequest) { r.Phone = "12345" }, MsgInvalidPhone},
		{"bad username", func(r *RegistrationRequest) { r.Username = "ab" }, MsgInvalidUsername},
		{"weak password", func(r *RegistrationRequest) { r.Password, r.ConfirmPassword = "password", "password" },
			MsgPasswordPolicy + DefaultPasswordPolicy().Describe()},
		{"mismatch", func(r *RegistrationRequest) { r.ConfirmPassword = "Passw0rdY" }, MsgPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			assertValidation(t, err, tt.want)
		})
	}

	if len(store.principals) != 0 {
		t.Error("invalid registrations must not be stored")
	}
	if notifier.count() != 0 {
		t.Error("invalid registrations must not notify")
	}
}

// Checks run in a fixed order; the first failing one wins.
func TestService_Register_ValidationOrder(t *testing.T) {
	svc, _, _ := newTestService()

	req := validRegistration()
	req.Email = "bad"
	req.Phone = "bad"
	req.Username = "x"
	_, err := svc.Register(context.Background(), req)
	assertValidation(t, err, MsgInvalidEmail)

	req = validRegistration()
	req.Password = "weak"
	req.ConfirmPassword = "different"
	_, err = svc.Register(context.Background(), req)
	assertValidation(t, err, MsgPasswordPolicy+DefaultPasswordPolicy().Describe())
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, _, notifier := newTestService()

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err := svc.Register(context.Background(), dup)
	if !apperrors.Is(err, apperrors.KindRegistration) {
		t.Fatalf("expected registration error, got %v", err)
	}
	if apperrors.PublicMessage(err) != apperrors.MsgRegistrationFailed {
		t.Errorf("message = %q", apperrors.PublicMessage(err))
	}
	if notifier.count() != 1 {
		t.Errorf("duplicate must not notify, got %d notifications", notifier.count())
	}
}

func TestService_Register_StoreFailure(t *testing.T) {
	svc, store, _ := newTestService()
	store.createErr = errors.New("database is locked")

	_, err := svc.Register(context.Background(), validRegistration())
	if !apperrors.Is(err, apperrors.KindRegistration) {
		t.Fatalf("expected registration error, got %v", err)
	}
	if strings.Contains(apperrors.PublicMessage(err), "locked") {
		t.Error("storage detail leaked to the public message")
	}
}

func TestService_Register_NotifierFailureIgnored(t *testing.T) {
	svc, store, notifier := newTestService()
	notifier.result = false

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("notification failure must not fail registration: %v", err)
	}
	if len(store.principals) != 1 || notifier.count() != 1 {
		t.Error("principal should be stored and exactly one send attempted")
	}
}

func TestService_Login(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "nimal@example.com", "Passw0rdX")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Principal.Username != "nimal_p" {
		t.Errorf("username = %q", result.Principal.Username)
	}
	if result.Destination != DefaultDestination {
		t.Errorf("destination = %q, want %q", result.Destination, DefaultDestination)
	}
}

func TestService_Login_GenericFailure(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), "nimal@example.com", "Wr0ngPassword")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "Passw0rdX")

	for _, err := range []error{wrongPassword, unknownEmail} {
		if !apperrors.Is(err, apperrors.KindAuthentication) {
			t.Fatalf("expected authentication error, got %v", err)
		}
	}
	if apperrors.PublicMessage(wrongPassword) != apperrors.PublicMessage(unknownEmail) {
		t.Error("unknown email and wrong password must look identical")
	}
	if apperrors.PublicMessage(wrongPassword) != apperrors.MsgInvalidCredentials {
		t.Errorf("message = %q", apperrors.PublicMessage(wrongPassword))
	}
}

func TestService_Login_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		email, password, want string
	}{
		{"", "Passw0rdX", MsgCredentialsRequired},
		{"nimal@example.com", "", MsgCredentialsRequired},
		{"   ", "Passw0rdX", MsgCredentialsRequired},
		{"nimal", "Passw0rdX", MsgInvalidEmail},
		{" nimal@example.com", "Passw0rdX", MsgInvalidEmail},
	}

	for _, tt := range tests {
		_, err := svc.Login(context.Background(), tt.email, tt.password)
		assertValidation(t, err, tt.want)
	}
}

func TestService_Login_StoreFailure(t *testing.T) {
	svc, store, _ := newTestService()
	store.findErr = errors.New("disk I/O error")

	_, err := svc.Login(context.Background(), "nimal@example.com", "Passw0rdX")
	if !apperrors.Is(err, apperrors.KindTechnical) {
		t.Fatalf("expected technical error, got %v", err)
	}
	if apperrors.PublicMessage(err) != apperrors.MsgTechnical {
		t.Errorf("message = %q", apperrors.PublicMessage(err))
	}
}

func TestService_CreatePrincipal(t *testing.T) {
	svc, _, notifier := newTestService()

	req := validRegistration()
	principal, err := svc.CreatePrincipal(context.Background(), req, entities.RoleAdmin)
	if err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}
	if principal.Role != entities.RoleAdmin {
		t.Errorf("role = %q, want admin", principal.Role)
	}
	if notifier.count() != 0 {
		t.Error("CreatePrincipal must not send email")
	}

	result, err := svc.Login(context.Background(), req.Email, req.Password)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Destination != AdminDestination {
		t.Errorf("destination = %q, want %q", result.Destination, AdminDestination)
	}

	_, err = svc.CreatePrincipal(context.Background(), validRegistration(), entities.Role("root"))
	assertValidation(t, err, MsgInvalidRole)
}

func TestDestinationFor(t *testing.T) {
	tests := map[entities.Role]string{
		entities.RoleAdmin:    "/admin/dashboard",
		entities.RoleEmployer: "/employer/dashboard",
		entities.RoleStudent:  "/dashboard",
		"":                    "/dashboard",
		"unknown":             "/dashboard",
	}
	for role, want := range tests {
		if got := DestinationFor(role); got != want {
			t.Errorf("DestinationFor(%q) = %q, want %q", role, got, want)
		}
	}
}
