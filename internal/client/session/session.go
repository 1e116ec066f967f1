// Package session keeps track of who is signed in on this device.
//
// The session pointer is a single JSON-encoded User stored under UserKey in
// the device-local key-value store, tagged with the backend that issued it. Accounts themselves live in a Directory,
// which is the local account list or the remote users table depending on
// the configured backend.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/client/repositories/kv"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/dmitrijs2005/citywatch/internal/cryptox"
	"github.com/dmitrijs2005/citywatch/internal/logging"
)

const UserKey = "user"

// Directory resolves and creates accounts.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// Register fails with common.ErrConflict when email is taken.
	Register(ctx context.Context, email, name, secretHash string) (*models.User, error)
}

type Store struct {
	kv      kv.Store
	dir     Directory
	log     logging.Logger
	hash    func(secret []byte) string
	backend string
}

type Option func(*Store)

// WithBackend tags persisted sessions with name. A pointer issued by a
// different backend then reads as no session.
func WithBackend(name string) Option {
	return func(s *Store) { s.backend = name }
}

func NewStore(store kv.Store, dir Directory, log logging.Logger, opts ...Option) *Store {
	s := &Store{kv: store, dir: dir, log: log, hash: cryptox.HashSecret}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record is the persisted form of the session pointer.
type record struct {
	models.User
	Backend string `json:"backend,omitempty"`
}

// Login verifies the credentials against the directory and, on success,
// persists the user as the session pointer. Nothing is written on failure.
func (s *Store) Login(ctx context.Context, email, secret string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || secret == "" {
		return nil, fmt.Errorf("%w: email and secret are required", common.ErrValidation)
	}

	acc, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: invalid email or secret", common.ErrAuthentication)
		}
		return nil, err
	}

	ok, err := cryptox.VerifySecret(acc.SecretHash, []byte(secret))
	if err != nil {
		s.log.Warn(ctx, "stored secret hash is unreadable", "user_id", acc.ID, "error", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid email or secret", common.ErrAuthentication)
	}

	user := acc.User
	if err := s.persist(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Signup registers a new account and signs it in.
func (s *Store) Signup(ctx context.Context, email, secret, name string) (*models.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validateSignup(email, secret, name); err != nil {
		return nil, err
	}

	user, err := s.dir.Register(ctx, email, name, s.hash([]byte(secret)))
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentUser returns the signed-in user. A missing, unreadable or malformed
// pointer reports false and is logged; it is never an error.
func (s *Store) CurrentUser(ctx context.Context) (*models.User, bool) {
	raw, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		s.log.Warn(ctx, "session pointer unreadable", "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warn(ctx, "session pointer malformed", "error", err)
		return nil, false
	}
	if rec.ID == "" {
		s.log.Warn(ctx, "session pointer malformed", "error", "missing user id")
		return nil, false
	}
	if s.backend != "" && rec.Backend != s.backend {
		s.log.Info(ctx, "session pointer belongs to another backend", "session_backend", rec.Backend, "backend", s.backend)
		return nil, false
	}
	user := rec.User
	return &user, true
}

// Logout clears the session pointer. Logging out twice is fine.
func (s *Store) Logout(ctx context.Context) error {
	return s.kv.Delete(ctx, UserKey)
}

func (s *Store) persist(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(record{User: *user, Backend: s.backend})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.kv.Set(ctx, UserKey, data)
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(email, secret, name string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: email %q is not valid", common.ErrValidation, email)
	}
	if secret == "" {
		return fmt.Errorf("%w: secret is required", common.ErrValidation)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	return nil
}
