// Package session owns the cashier's auth state: the bearer token, the
// profile behind it, and the durable copy of both. Network work happens in
// Login/Restore/Logout; state mutation happens in the Apply methods so the
// event loop stays the only writer.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/magpos/magpos/internal/magento"
	"github.com/magpos/magpos/internal/notify"
	"github.com/magpos/magpos/internal/session/vault"
)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// User is the identity shown in the topbar and attached to orders.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

type Session struct {
	Token string
	User  User
}

// Backend is the slice of the API client the session store needs.
type Backend interface {
	GenerateToken(ctx context.Context, email, password string) (string, error)
	CustomerProfile(ctx context.Context) (magento.Customer, error)
	RevokeToken(ctx context.Context) error
	SetToken(token string)
	ClearToken()
}

type Store struct {
	api    Backend
	vault  *vault.Vault
	notify *notify.Queue
	log    zerolog.Logger

	state State
	user  User
	token string
	err   error
}

func NewStore(api Backend, v *vault.Vault, q *notify.Queue, log zerolog.Logger) *Store {
	return &Store{
		api:    api,
		vault:  v,
		notify: q,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// Login exchanges credentials for a token, fetches the profile with it,
// persists both, and announces the session. Network only; the caller feeds
// the result to ApplyLogin.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", magento.ErrValidation)
	}
	token, err := s.api.GenerateToken(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	s.api.SetToken(token)

	cust, err := s.api.CustomerProfile(ctx)
	if err != nil {
		s.api.ClearToken()
		return Session{}, err
	}
	sess := Session{Token: token, User: userFromCustomer(cust)}
	s.persist(sess)
	s.notify.Show(notify.KindSuccess, "Welcome back, "+sess.User.Firstname+"!", 0)
	return sess, nil
}

// Restore recovers a session from the vault on process start. Any decode
// error, expired claim or backend rejection clears the vault and reports no
// session; nothing here is surfaced to the user.
func (s *Store) Restore(ctx context.Context) (Session, bool) {
	rec, ok, err := s.vault.Load()
	if err != nil || !ok {
		if err != nil {
			s.log.Warn().Err(err).Msg("vault read failed")
		}
		return Session{}, false
	}
	if tokenExpired(rec.Token, time.Now()) {
		s.log.Info().Msg("stored token expired or undecodable, clearing session")
		s.discard()
		return Session{}, false
	}

	s.api.SetToken(rec.Token)
	cust, err := s.api.CustomerProfile(ctx)
	if err != nil {
		s.log.Info().Err(err).Msg("stored token rejected by backend, clearing session")
		s.discard()
		return Session{}, false
	}

	sess := Session{Token: rec.Token, User: userFromCustomer(cust)}
	s.persist(sess)
	s.notify.Show(notify.KindSuccess, "Welcome back, "+sess.User.Firstname+"!", 0)
	return sess, true
}

// Logout revokes the token best-effort (failure is logged, never surfaced)
// and clears both the vault and the client token.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.RevokeToken(ctx); err != nil {
		s.log.Warn().Err(err).Msg("token revocation failed, continuing with local cleanup")
	}
	s.discard()
}

func (s *Store) persist(sess Session) {
	profile, err := json.Marshal(sess.User)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile marshal failed, session not persisted")
		return
	}
	if err := s.vault.Save(vault.Record{Token: sess.Token, Profile: profile}); err != nil {
		s.log.Warn().Err(err).Msg("vault write failed, session not persisted")
	}
}

func (s *Store) discard() {
	s.api.ClearToken()
	if err := s.vault.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("vault clear failed")
	}
}

// BeginInit marks restore in flight. Uninitialized -> Initializing.
func (s *Store) BeginInit() {
	s.state = StateInitializing
}

// ApplyLogin reduces a Login result into the store.
func (s *Store) ApplyLogin(sess Session, err error) {
	if err != nil {
		s.state = StateAnonymous
		s.user = User{}
		s.token = ""
		s.err = err
		return
	}
	s.state = StateAuthenticated
	s.user = sess.User
	s.token = sess.Token
	s.err = nil
}

// ApplyRestore reduces a Restore result. A failed restore is a clean
// anonymous state, not an error.
func (s *Store) ApplyRestore(sess Session, ok bool) {
	if !ok {
		s.state = StateAnonymous
		s.user = User{}
		s.token = ""
		s.err = nil
		return
	}
	s.state = StateAuthenticated
	s.user = sess.User
	s.token = sess.Token
	s.err = nil
}

// ApplyLogout reduces to anonymous.
func (s *Store) ApplyLogout() {
	s.state = StateAnonymous
	s.user = User{}
	s.token = ""
	s.err = nil
}

func (s *Store) State() State        { return s.state }
func (s *Store) Authenticated() bool { return s.state == StateAuthenticated }
func (s *Store) Initialized() bool {
	return s.state == StateAuthenticated || s.state == StateAnonymous
}
func (s *Store) User() User { return s.user }
func (s *Store) Err() error { return s.err }
func (s *Store) ClearErr()  { s.err = nil }

func userFromCustomer(c magento.Customer) User {
	return User{
		ID:        c.ID,
		Email:     c.Email,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		Name:      c.Firstname + " " + c.Lastname,
		Role:      "Cashier",
	}
}
