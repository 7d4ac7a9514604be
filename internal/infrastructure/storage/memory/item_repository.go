package memory

import (
	"context"
	"sort"
	"time"

	"clipsync/internal/domain/group"
	"clipsync/internal/domain/item"
)

type ItemRepository struct {
	st *state
}

func (r *ItemRepository) Upsert(ctx context.Context, it item.Item) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	grp := r.st.items[it.SyncGroupID]
	if grp == nil {
		grp = make(map[string]item.Item)
		r.st.items[it.SyncGroupID] = grp
	}

	existing, ok := grp[it.ID]
	if ok && existing.UpdatedAt > it.UpdatedAt {
		// Существующая запись новее, входящая отвергается
		return false, nil
	}

	if ok {
		it.CreatedAt = existing.CreatedAt
	} else {
		it.CreatedAt = time.Now()
	}

	r.st.seq++
	it.Seq = r.st.seq
	grp[it.ID] = it

	return true, nil
}

func (r *ItemRepository) ListSince(ctx context.Context, groupID string, since int64, limit int) ([]item.Item, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var items []item.Item
	for _, it := range r.st.items[groupID] {
		if it.UpdatedAt > since {
			items = append(items, it)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt != items[j].UpdatedAt {
			return items[i].UpdatedAt < items[j].UpdatedAt
		}
		return items[i].Seq < items[j].Seq
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

func (r *ItemRepository) SoftDelete(ctx context.Context, groupID string, ids []string, deletedAt int64) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	grp := r.st.items[groupID]

	var deleted int64
	for _, id := range ids {
		it, ok := grp[id]
		if !ok || it.Deleted {
			continue
		}

		it.Deleted = true
		it.UpdatedAt = deletedAt
		r.st.seq++
		it.Seq = r.st.seq
		grp[id] = it
		deleted++
	}

	return deleted, nil
}

func (r *ItemRepository) CountActive(ctx context.Context, groupID string) (int64, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var count, totalSize int64
	for _, it := range r.st.items[groupID] {
		if it.Deleted {
			continue
		}
		count++
		totalSize += it.Size
	}

	return count, totalSize, nil
}

func (r *ItemRepository) ListDevices(ctx context.Context, groupID string) ([]item.DeviceSummary, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var devices []item.DeviceSummary
	for _, d := range r.st.devices {
		if d.SyncGroupID != groupID {
			continue
		}
		devices = append(devices, item.DeviceSummary{
			ID:       d.ID,
			Name:     d.Name,
			Type:     string(d.Type),
			LastSeen: d.LastSeen,
			Active:   d.Active,
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].LastSeen.After(devices[j].LastSeen)
	})

	return devices, nil
}

func (r *ItemRepository) GroupActivity(ctx context.Context, groupID string) (time.Time, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	g, ok := r.st.groups[groupID]
	if !ok {
		return time.Time{}, group.ErrNotFound
	}

	return g.LastActivity, nil
}

func (r *ItemRepository) TouchDevice(ctx context.Context, deviceID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if d, ok := r.st.devices[deviceID]; ok {
		d.LastSeen = time.Now()
		r.st.devices[deviceID] = d
	}

	return nil
}

func (r *ItemRepository) TouchGroup(ctx context.Context, groupID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if g, ok := r.st.groups[groupID]; ok {
		g.LastActivity = time.Now()
		r.st.groups[groupID] = g
	}

	return nil
}
