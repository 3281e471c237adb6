// Package session holds the currently authenticated user.
//
// The record is persisted under the currentUser overlay key so it survives
// restarts, and handed to request handlers as an explicit *Session value on
// the context instead of being read from global state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/overlay"
	"github.com/mmynk/taxava/internal/storage"
)

// ErrNoSession is returned when no user is logged in.
var ErrNoSession = errors.New("no active session")

// Session is the logged-in user as seen by one request.
type Session struct {
	User models.User
}

// UserID returns the ID of the logged-in user.
func (s *Session) UserID() int {
	return s.User.ID
}

// Holder persists the current user record.
type Holder struct {
	store storage.Store
}

// NewHolder creates a holder backed by store.
func NewHolder(store storage.Store) *Holder {
	return &Holder{store: store}
}

// Set records user as the current user, replacing any previous one.
func (h *Holder) Set(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode current user: %w", err)
	}
	if err := h.store.Set(ctx, storage.KeyCurrentUser, data); err != nil {
		return fmt.Errorf("failed to store current user: %w", err)
	}
	return nil
}

// Current returns the active session, or ErrNoSession when nobody is logged
// in. Unreadable stored data counts as no session.
func (h *Holder) Current(ctx context.Context) (*Session, error) {
	raw, err := h.store.Get(ctx, storage.KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read current user: %w", err)
	}
	if raw == nil {
		return nil, ErrNoSession
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		logDiscard(&overlay.DecodeError{Key: storage.KeyCurrentUser, Index: -1, Reason: "malformed", Err: err})
		return nil, ErrNoSession
	}
	if user.ID <= 0 {
		logDiscard(&overlay.DecodeError{Key: storage.KeyCurrentUser, Index: -1, Reason: "invalid_record", Err: fmt.Errorf("invalid id %d", user.ID)})
		return nil, ErrNoSession
	}
	return &Session{User: user}, nil
}

// Clear ends the session.
func (h *Holder) Clear(ctx context.Context) error {
	if err := h.store.Delete(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	return nil
}

// Refresh rewrites the stored record after the user changed, but only if
// that user is still the one logged in.
func (h *Holder) Refresh(ctx context.Context, user models.User) error {
	current, err := h.Current(ctx)
	if err != nil {
		return err
	}
	if current.UserID() != user.ID {
		return ErrNoSession
	}
	return h.Set(ctx, user)
}

func logDiscard(err *overlay.DecodeError) {
	slog.Warn("Discarding unusable current user", "reason", err.Reason, "error", err)
}

type contextKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session from ctx.
// Returns ErrNoSession if none was attached.
func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
