// Package repository persists the store's collections as JSON documents,
// one key-value slot per collection.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/eventhub/internal/kvstore"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// Slot keys. They are part of the on-disk format and never change.
const (
	KeyUser     = "eventBookingUser"
	KeyBookings = "eventBookings"
	KeyWishlist = "eventWishlist"
	KeyEvents   = "eventBookingEvents"
)

// ErrCorrupt is returned when a stored slot cannot be decoded.
var ErrCorrupt = errors.New("stored value is not valid JSON for its slot")

// SnapshotRepository reads and writes the four collection slots.
type SnapshotRepository struct {
	kv kvstore.Store
}

// NewSnapshotRepository constructs a SnapshotRepository.
func NewSnapshotRepository(kv kvstore.Store) *SnapshotRepository {
	return &SnapshotRepository{kv: kv}
}

// LoadUser returns the stored session user; ok is false when the slot is absent.
func (r *SnapshotRepository) LoadUser(ctx context.Context) (*model.User, bool, error) {
	var u model.User
	ok, err := load(ctx, r.kv, KeyUser, &u)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &u, true, nil
}

// SaveUser stores the session user.
func (r *SnapshotRepository) SaveUser(ctx context.Context, u *model.User) error {
	return save(ctx, r.kv, KeyUser, u)
}

// RemoveUser deletes the session slot.
func (r *SnapshotRepository) RemoveUser(ctx context.Context) error {
	return remove(ctx, r.kv, KeyUser)
}

// LoadEvents returns the stored event catalog.
func (r *SnapshotRepository) LoadEvents(ctx context.Context) ([]model.Event, bool, error) {
	var events []model.Event
	ok, err := load(ctx, r.kv, KeyEvents, &events)
	return events, ok, err
}

// SaveEvents stores the event catalog.
func (r *SnapshotRepository) SaveEvents(ctx context.Context, events []model.Event) error {
	return save(ctx, r.kv, KeyEvents, nonNil(events))
}

// LoadBookings returns the stored bookings.
func (r *SnapshotRepository) LoadBookings(ctx context.Context) ([]model.Booking, bool, error) {
	var bookings []model.Booking
	ok, err := load(ctx, r.kv, KeyBookings, &bookings)
	return bookings, ok, err
}

// SaveBookings stores the bookings.
func (r *SnapshotRepository) SaveBookings(ctx context.Context, bookings []model.Booking) error {
	return save(ctx, r.kv, KeyBookings, nonNil(bookings))
}

// RemoveBookings deletes the bookings slot.
func (r *SnapshotRepository) RemoveBookings(ctx context.Context) error {
	return remove(ctx, r.kv, KeyBookings)
}

// LoadWishlist returns the stored wishlist.
func (r *SnapshotRepository) LoadWishlist(ctx context.Context) ([]model.WishlistItem, bool, error) {
	var items []model.WishlistItem
	ok, err := load(ctx, r.kv, KeyWishlist, &items)
	return items, ok, err
}

// SaveWishlist stores the wishlist.
func (r *SnapshotRepository) SaveWishlist(ctx context.Context, items []model.WishlistItem) error {
	return save(ctx, r.kv, KeyWishlist, nonNil(items))
}

// RemoveWishlist deletes the wishlist slot.
func (r *SnapshotRepository) RemoveWishlist(ctx context.Context) error {
	return remove(ctx, r.kv, KeyWishlist)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func load(ctx context.Context, kv kvstore.Store, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}

func save(ctx context.Context, kv kvstore.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func remove(ctx context.Context, kv kvstore.Store, key string) error {
	if err := kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// nonNil makes empty collections serialise as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
