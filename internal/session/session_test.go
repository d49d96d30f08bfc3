package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/magpos/magpos/internal/magento"
	"github.com/magpos/magpos/internal/notify"
	"github.com/magpos/magpos/internal/session/vault"
)

type fakeBackend struct {
	token      string
	tokenErr   error
	customer   magento.Customer
	profileErr error
	revokeErr  error

	current string
	revoked bool
}

func (f *fakeBackend) GenerateToken(ctx context.Context, email, password string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

func (f *fakeBackend) CustomerProfile(ctx context.Context) (magento.Customer, error) {
	if f.profileErr != nil {
		return magento.Customer{}, f.profileErr
	}
	return f.customer, nil
}

func (f *fakeBackend) RevokeToken(ctx context.Context) error {
	f.revoked = true
	return f.revokeErr
}

func (f *fakeBackend) SetToken(token string) { f.current = token }
func (f *fakeBackend) ClearToken()           { f.current = "" }

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"uid": 7}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func newStore(t *testing.T, api Backend) (*Store, *vault.Vault, *notify.Queue) {
	t.Helper()
	v := vault.NewAt(filepath.Join(t.TempDir(), "session.dat"))
	q := notify.NewQueue()
	return NewStore(api, v, q, zerolog.Nop()), v, q
}

func TestLoginSuccess(t *testing.T) {
	api := &fakeBackend{
		token:    "T1",
		customer: magento.Customer{ID: 3, Email: "a@b.com", Firstname: "Ana", Lastname: "Diaz"},
	}
	s, v, q := newStore(t, api)

	sess, err := s.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	s.ApplyLogin(sess, nil)

	if !s.Authenticated() || s.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, state=%v", s.State())
	}
	if sess.Token != "T1" {
		t.Fatalf("token = %q", sess.Token)
	}
	if !strings.HasPrefix(s.User().Name, "Ana") {
		t.Fatalf("user name = %q", s.User().Name)
	}
	if api.current != "T1" {
		t.Fatalf("client token not installed: %q", api.current)
	}
	if rec, ok, _ := v.Load(); !ok || rec.Token != "T1" {
		t.Fatalf("session not persisted: ok=%v rec=%+v", ok, rec)
	}
	if q.Len() != 1 || q.Active()[0].Kind != notify.KindSuccess {
		t.Fatalf("expected one success notification, got %+v", q.Active())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	api := &fakeBackend{tokenErr: magento.ErrAuth}
	s, v, _ := newStore(t, api)

	sess, err := s.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	s.ApplyLogin(sess, err)

	if s.Authenticated() {
		t.Fatal("authenticated after failed login")
	}
	if s.Err() == nil {
		t.Fatal("error not recorded")
	}
	if _, ok, _ := v.Load(); ok {
		t.Fatal("failed login persisted a session")
	}
}

func TestLoginProfileFailureClearsToken(t *testing.T) {
	api := &fakeBackend{token: "T1", profileErr: errors.New("boom")}
	s, _, _ := newStore(t, api)

	if _, err := s.Login(context.Background(), "a@b.com", "x"); err == nil {
		t.Fatal("expected error")
	}
	if api.current != "" {
		t.Fatalf("token left installed after profile failure: %q", api.current)
	}
}

func TestLoginEmptyCredentialsRejectedLocally(t *testing.T) {
	api := &fakeBackend{token: "T1"}
	s, _, _ := newStore(t, api)

	_, err := s.Login(context.Background(), "", "")
	if !errors.Is(err, magento.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRestoreExpiredTokenFailsClosed(t *testing.T) {
	api := &fakeBackend{customer: magento.Customer{Firstname: "Ana"}}
	s, v, _ := newStore(t, api)
	expired := signedToken(t, time.Now().Add(-time.Hour))
	if err := v.Save(vault.Record{Token: expired}); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Restore(context.Background()); ok {
		t.Fatal("expired token restored a session")
	}
	if _, ok, _ := v.Load(); ok {
		t.Fatal("vault not cleared after expired token")
	}
}

func TestRestoreMalformedTokenFailsClosed(t *testing.T) {
	api := &fakeBackend{}
	s, v, _ := newStore(t, api)
	if err := v.Save(vault.Record{Token: "not-a-jwt"}); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Restore(context.Background()); ok {
		t.Fatal("malformed token restored a session")
	}
	if _, ok, _ := v.Load(); ok {
		t.Fatal("vault not cleared after malformed token")
	}
}

func TestRestoreTokenWithoutExpiryFailsClosed(t *testing.T) {
	api := &fakeBackend{}
	s, v, _ := newStore(t, api)
	if err := v.Save(vault.Record{Token: signedToken(t, time.Time{})}); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Restore(context.Background()); ok {
		t.Fatal("token without expiry claim restored a session")
	}
}

func TestRestoreBackendRejectionFailsClosed(t *testing.T) {
	api := &fakeBackend{profileErr: magento.ErrAuth}
	s, v, _ := newStore(t, api)
	valid := signedToken(t, time.Now().Add(time.Hour))
	if err := v.Save(vault.Record{Token: valid}); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Restore(context.Background()); ok {
		t.Fatal("rejected token restored a session")
	}
	if api.current != "" {
		t.Fatal("client token not cleared after rejection")
	}
	if _, ok, _ := v.Load(); ok {
		t.Fatal("vault not cleared after rejection")
	}
}

func TestRestoreValidSession(t *testing.T) {
	api := &fakeBackend{customer: magento.Customer{Firstname: "Ana", Lastname: "Diaz"}}
	s, v, q := newStore(t, api)
	valid := signedToken(t, time.Now().Add(time.Hour))
	if err := v.Save(vault.Record{Token: valid}); err != nil {
		t.Fatal(err)
	}

	sess, ok := s.Restore(context.Background())
	if !ok {
		t.Fatal("valid session not restored")
	}
	s.ApplyRestore(sess, ok)
	if !s.Authenticated() {
		t.Fatal("restore did not authenticate")
	}
	if q.Len() != 1 {
		t.Fatalf("expected welcome notification, got %d", q.Len())
	}
}

func TestLogoutAlwaysClearsEvenWhenRevokeFails(t *testing.T) {
	api := &fakeBackend{token: "T1", customer: magento.Customer{Firstname: "Ana"}, revokeErr: errors.New("offline")}
	s, v, _ := newStore(t, api)
	sess, err := s.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatal(err)
	}
	s.ApplyLogin(sess, nil)

	s.Logout(context.Background())
	s.ApplyLogout()

	if !api.revoked {
		t.Fatal("revoke not attempted")
	}
	if s.Authenticated() {
		t.Fatal("still authenticated after logout")
	}
	if api.current != "" {
		t.Fatal("client token survived logout")
	}
	if _, ok, _ := v.Load(); ok {
		t.Fatal("vault survived logout")
	}
}

func TestStateMachineProgression(t *testing.T) {
	s, _, _ := newStore(t, &fakeBackend{})
	if s.State() != StateUninitialized {
		t.Fatalf("initial state = %v", s.State())
	}
	s.BeginInit()
	if s.State() != StateInitializing || s.Initialized() {
		t.Fatalf("after BeginInit state = %v", s.State())
	}
	s.ApplyRestore(Session{}, false)
	if s.State() != StateAnonymous || !s.Initialized() {
		t.Fatalf("after failed restore state = %v", s.State())
	}
}
