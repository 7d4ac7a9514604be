package memory

import (
	"context"
	"time"

	"clipsync/internal/domain/session"
)

type SessionRepository struct {
	st *state
}

func (r *SessionRepository) Create(ctx context.Context, t session.Token) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.LastUsedAt.IsZero() {
		t.LastUsedAt = now
	}
	r.st.tokens[t.TokenHash] = t

	return nil
}

func (r *SessionRepository) FindByHash(ctx context.Context, tokenHash string) (session.Token, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	t, ok := r.st.tokens[tokenHash]
	if !ok {
		return session.Token{}, session.ErrTokenNotFound
	}

	return t, nil
}

func (r *SessionRepository) RevokeAllForDevice(ctx context.Context, deviceID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for hash, t := range r.st.tokens {
		if t.DeviceID == deviceID && !t.Revoked {
			t.Revoked = true
			r.st.tokens[hash] = t
		}
	}

	return nil
}

func (r *SessionRepository) TouchLastUsed(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for hash, t := range r.st.tokens {
		if t.ID == id {
			t.LastUsedAt = time.Now()
			r.st.tokens[hash] = t
			return nil
		}
	}

	return nil
}
