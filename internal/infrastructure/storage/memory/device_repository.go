package memory

import (
	"context"
	"time"

	"clipsync/internal/domain/device"
)

type DeviceRepository struct {
	st *state
}

func (r *DeviceRepository) Upsert(ctx context.Context, d device.Device) (device.Device, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	now := time.Now()
	if existing, ok := r.st.devices[d.ID]; ok {
		d.RegisteredAt = existing.RegisteredAt
	} else {
		d.RegisteredAt = now
	}
	d.LastSeen = now
	d.Active = true
	r.st.devices[d.ID] = d

	return d, nil
}

func (r *DeviceRepository) Find(ctx context.Context, id string) (device.Device, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	d, ok := r.st.devices[id]
	if !ok {
		return device.Device{}, device.ErrNotFound
	}

	return d, nil
}

func (r *DeviceRepository) IsActive(ctx context.Context, id string) (bool, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	d, ok := r.st.devices[id]
	if !ok {
		return false, nil
	}

	return d.Active, nil
}

func (r *DeviceRepository) Deactivate(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	d, ok := r.st.devices[id]
	if !ok {
		return device.ErrNotFound
	}

	d.Active = false
	r.st.devices[id] = d

	return nil
}
