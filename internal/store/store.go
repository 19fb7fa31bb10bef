// Package store is the single owner of the session, event, booking and
// wishlist collections. Every mutation is applied by a pure transition
// function from state.go and then mirrored into durable storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/kvstore"
	"github.com/Shivanand-hulikatti/eventhub/internal/logger"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

// ErrNotReady is returned by mutations before Load or after Dispose.
var ErrNotReady = errors.New("store: not loaded")

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps and event ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for mutation traces.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithResetOnLogin makes Login and Signup empty the bookings and wishlist
// as part of replacing the session.
func WithResetOnLogin(reset bool) Option {
	return func(s *Store) { s.resetOnLogin = reset }
}

// Store holds the application state. It is safe for concurrent use; all
// mutations are serialised.
type Store struct {
	repo *repository.SnapshotRepository
	auth auth.Authenticator
	log  logrus.FieldLogger
	now  func() time.Time

	resetOnLogin bool

	booting     atomic.Bool
	authPending atomic.Int32

	mu    sync.Mutex
	ready bool
	state State
}

// New constructs a Store over kv. The store reports Loading until Load
// completes.
func New(kv kvstore.Store, authn auth.Authenticator, opts ...Option) *Store {
	s := &Store{
		repo: repository.NewSnapshotRepository(kv),
		auth: authn,
		log:  logger.Discard(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.booting.Store(true)
	return s
}

// Load reads every collection from storage. A missing event catalog is
// replaced by the starter catalog, which is persisted immediately; the other
// collections start empty.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	s.booting.Store(true)
	defer s.booting.Store(false)

	var st State
	user, _, err := s.repo.LoadUser(ctx)
	if err != nil {
		return err
	}
	st.User = user

	if st.Bookings, _, err = s.repo.LoadBookings(ctx); err != nil {
		return err
	}
	if st.Wishlist, _, err = s.repo.LoadWishlist(ctx); err != nil {
		return err
	}

	events, ok, err := s.repo.LoadEvents(ctx)
	if err != nil {
		return err
	}
	if !ok {
		events = StarterCatalog()
		if err := s.repo.SaveEvents(ctx, events); err != nil {
			return fmt.Errorf("seed events: %w", err)
		}
		s.log.WithField("events", len(events)).Info("seeded starter catalog")
	}
	st.Events = events

	s.state = st
	s.ready = true

	s.log.WithFields(logrus.Fields{
		"events":        len(st.Events),
		"bookings":      len(st.Bookings),
		"wishlist":      len(st.Wishlist),
		"authenticated": st.User != nil,
	}).Debug("store loaded")
	return nil
}

// Dispose drops the in-memory state. Storage is left untouched, so a new
// Store over the same backend picks up where this one stopped.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	s.ready = false
	s.state = State{}
}

// Loading is true while the store is loading and while a login or signup
// is waiting on the authenticator.
func (s *Store) Loading() bool {
	return s.booting.Load() || s.authPending.Load() > 0
}

// ─── Session ──────────────────────────────────────────────────────────────────

// Login authenticates and replaces the current session.
func (s *Store) Login(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	s.authPending.Add(1)
	u, err := s.auth.Login(ctx, email, password, role)
	s.authPending.Add(-1)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.startSession(ctx, u)
}

// Signup registers and replaces the current session.
func (s *Store) Signup(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	s.authPending.Add(1)
	u, err := s.auth.Signup(ctx, name, email, password, role)
	s.authPending.Add(-1)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return s.startSession(ctx, u)
}

func (s *Store) startSession(ctx context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}
	ctx = detach(ctx)

	if err := s.repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	next := s.state.Clone()
	next.User = u
	if s.resetOnLogin {
		next.Bookings, next.Wishlist = nil, nil
		if err := s.repo.SaveBookings(ctx, nil); err != nil {
			return nil, err
		}
		if err := s.repo.SaveWishlist(ctx, nil); err != nil {
			return nil, err
		}
	}
	s.state = next

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("session started")
	out := *u
	return &out, nil
}

// Logout ends the session and drops the session-scoped collections from
// memory and storage. Events are shared and survive.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}
	ctx = detach(ctx)

	if err := s.repo.RemoveUser(ctx); err != nil {
		return err
	}
	if err := s.repo.RemoveBookings(ctx); err != nil {
		return err
	}
	if err := s.repo.RemoveWishlist(ctx); err != nil {
		return err
	}
	s.state.User = nil
	s.state.Bookings = nil
	s.state.Wishlist = nil

	s.log.Info("session ended")
	return nil
}

// UpdateProfile merges patch into the session user. Without a session it
// does nothing.
func (s *Store) UpdateProfile(ctx context.Context, patch model.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}
	ctx = detach(ctx)
	if s.state.User == nil {
		return nil
	}

	u := MergeUser(*s.state.User, patch)
	if err := s.repo.SaveUser(ctx, &u); err != nil {
		return err
	}
	s.state.User = &u
	return nil
}

// ─── Bookings ─────────────────────────────────────────────────────────────────

// AddBooking records b and credits the referenced event.
func (s *Store) AddBooking(ctx context.Context, b model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}
	return s.addBooking(detach(ctx), b)
}

// ReserveBooking is AddBooking guarded by capacity: b is recorded only if
// its event exists, is bookable and has at least b.Quantity seats left.
// The check and the write happen under one lock, so concurrent callers
// can never oversell an event. It reports whether b was recorded.
func (s *Store) ReserveBooking(ctx context.Context, b model.Booking) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, ErrNotReady
	}

	idx := slices.IndexFunc(s.state.Events, func(e model.Event) bool { return e.ID == b.EventID })
	if idx < 0 {
		return false, nil
	}
	if e := s.state.Events[idx]; !e.IsBookable() || e.Remaining() < b.Quantity {
		return false, nil
	}
	if err := s.addBooking(detach(ctx), b); err != nil {
		return false, err
	}
	return true, nil
}

// addBooking persists and commits b. Callers hold mu.
func (s *Store) addBooking(ctx context.Context, b model.Booking) error {
	events, bookings := ApplyBooking(s.state.Events, s.state.Bookings, b)
	if err := s.repo.SaveBookings(ctx, bookings); err != nil {
		return err
	}
	if err := s.repo.SaveEvents(ctx, events); err != nil {
		return err
	}
	s.state.Events, s.state.Bookings = events, bookings

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"event_id":   b.EventID,
		"quantity":   b.Quantity,
	}).Debug("booking added")
	return nil
}

// CancelBooking removes a booking and debits the referenced event. It
// reports whether the booking existed; an unknown id is a no-op.
func (s *Store) CancelBooking(ctx context.Context, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, ErrNotReady
	}
	ctx = detach(ctx)

	events, bookings, found := ReverseBooking(s.state.Events, s.state.Bookings, bookingID)
	if !found {
		return false, nil
	}
	if err := s.repo.SaveEvents(ctx, events); err != nil {
		return false, err
	}
	if err := s.repo.SaveBookings(ctx, bookings); err != nil {
		return false, err
	}
	s.state.Events, s.state.Bookings = events, bookings

	s.log.WithField("booking_id", bookingID).Debug("booking cancelled")
	return true, nil
}

// ─── Wishlist ─────────────────────────────────────────────────────────────────

// ToggleWishlist adds item when absent and removes it when present. It
// reports whether the item is saved afterwards.
func (s *Store) ToggleWishlist(ctx context.Context, item model.WishlistItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, ErrNotReady
	}
	ctx = detach(ctx)

	items, added := ToggleWishlist(s.state.Wishlist, item)
	if err := s.repo.SaveWishlist(ctx, items); err != nil {
		return false, err
	}
	s.state.Wishlist = items
	return added, nil
}

// IsInWishlist reports whether eventID is saved.
func (s *Store) IsInWishlist(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return InWishlist(s.state.Wishlist, eventID)
}

// ─── Events ───────────────────────────────────────────────────────────────────

// CreateEvent stamps data with a fresh id and the session's identity and
// appends it. Without a session it returns nil and does nothing.
func (s *Store) CreateEvent(ctx context.Context, data model.NewEvent) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}
	ctx = detach(ctx)
	if s.state.User == nil {
		return nil, nil
	}

	now := s.now()
	e := StampEvent(data, *s.state.User, s.nextEventID(now), now)
	events := append(slices.Clone(s.state.Events), e)
	if err := s.repo.SaveEvents(ctx, events); err != nil {
		return nil, err
	}
	s.state.Events = events

	s.log.WithFields(logrus.Fields{"event_id": e.ID, "organizer_id": e.OrganizerID}).Info("event created")
	return &e, nil
}

// nextEventID derives an id from the clock, stepping past ids already in
// use. Callers hold mu.
func (s *Store) nextEventID(now time.Time) string {
	n := now.UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if !slices.ContainsFunc(s.state.Events, func(e model.Event) bool { return e.ID == id }) {
			return id
		}
		n++
	}
}

// UpdateEvent merges patch into an event and reports whether it existed.
// Snapshot fields on bookings and wishlist entries are not rewritten.
func (s *Store) UpdateEvent(ctx context.Context, eventID string, patch model.EventPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, ErrNotReady
	}
	ctx = detach(ctx)

	events, found := PatchEvent(s.state.Events, eventID, patch)
	if !found {
		return false, nil
	}
	if err := s.repo.SaveEvents(ctx, events); err != nil {
		return false, err
	}
	s.state.Events = events
	return true, nil
}

// DeleteEvent removes an event and cascades to its bookings and wishlist
// entries. It reports whether the event existed.
func (s *Store) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, ErrNotReady
	}
	ctx = detach(ctx)

	next, found := RemoveEvent(s.state, eventID)
	if err := s.repo.SaveEvents(ctx, next.Events); err != nil {
		return false, err
	}
	if err := s.repo.SaveBookings(ctx, next.Bookings); err != nil {
		return false, err
	}
	if err := s.repo.SaveWishlist(ctx, next.Wishlist); err != nil {
		return false, err
	}
	s.state = next

	s.log.WithFields(logrus.Fields{"event_id": eventID, "found": found}).Info("event deleted")
	return found, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// User returns a copy of the session user, or nil.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// IsAuthenticated reports whether a session exists.
func (s *Store) IsAuthenticated() bool {
	return s.User() != nil
}

// Events returns every event.
func (s *Store) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNil(slices.Clone(s.state.Events))
}

// Event looks up a single event.
func (s *Store) Event(eventID string) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.state.Events, func(e model.Event) bool { return e.ID == eventID })
	if idx < 0 {
		return model.Event{}, false
	}
	return s.state.Events[idx], true
}

// Bookings returns every booking.
func (s *Store) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNil(slices.Clone(s.state.Bookings))
}

// Booking looks up a single booking.
func (s *Store) Booking(bookingID string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.state.Bookings, func(b model.Booking) bool { return b.ID == bookingID })
	if idx < 0 {
		return model.Booking{}, false
	}
	return s.state.Bookings[idx], true
}

// Wishlist returns the saved events.
func (s *Store) Wishlist() []model.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNil(slices.Clone(s.state.Wishlist))
}

// GetEventBookings returns the bookings of one event.
func (s *Store) GetEventBookings(eventID string) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BookingsForEvent(s.state.Bookings, eventID)
}

// UserBookings returns the bookings owned by userID.
func (s *Store) UserBookings(userID string) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BookingsForUser(s.state.Bookings, userID)
}

// OrganizerEvents returns the events owned by the session user.
func (s *Store) OrganizerEvents() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return []model.Event{}
	}
	return EventsOwnedBy(s.state.Events, s.state.User.ID)
}

// GetOrganizerStats aggregates the session organizer's events. It is all
// zeros without an organizer session.
func (s *Store) GetOrganizerStats() model.OrganizerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsFor(s.state.Events, s.state.User)
}

// Snapshot returns a copy of the whole state plus the loading flag.
func (s *Store) Snapshot() model.StateSnapshot {
	s.mu.Lock()
	st := s.state.Clone()
	s.mu.Unlock()
	return model.StateSnapshot{
		User:     st.User,
		Events:   nonNil(st.Events),
		Bookings: nonNil(st.Bookings),
		Wishlist: nonNil(st.Wishlist),
		Loading:  s.Loading(),
	}
}

// detach keeps ctx values but drops its cancellation. Once a mutation has
// started writing, every slot must be written or the slots disagree after
// a restart; backends still bound each call with their own timeouts.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
