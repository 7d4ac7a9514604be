package memory

import (
	"context"
	"time"

	"clipsync/internal/domain/group"
)

type GroupRepository struct {
	st *state
}

func (r *GroupRepository) Upsert(ctx context.Context, id string) (group.SyncGroup, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	g, ok := r.st.groups[id]
	if !ok {
		now := time.Now()
		g = group.SyncGroup{ID: id, CreatedAt: now, LastActivity: now}
	} else {
		g.LastActivity = time.Now()
	}
	r.st.groups[id] = g

	return g, nil
}

func (r *GroupRepository) Find(ctx context.Context, id string) (group.SyncGroup, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	g, ok := r.st.groups[id]
	if !ok {
		return group.SyncGroup{}, group.ErrNotFound
	}

	return g, nil
}
