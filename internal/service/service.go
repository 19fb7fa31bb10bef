// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the store.
//
// The service holds no store of its own: every call resolves the store from
// the request context, so it must run inside a scope set up with
// store.NewContext.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/eventhub/internal/metrics"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/store"
)

// Sentinel errors mapped to HTTP statuses by the handler layer.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrEventFull         = errors.New("event is not accepting bookings")
	ErrInvalidTicketType = errors.New("ticket type is not available")
)

// Ticket types offered for every event.
const (
	TicketGeneral   = "general"
	TicketVIP       = "vip"
	TicketEarlyBird = "early-bird"
)

type ticketType struct {
	name       string
	multiplier float64
	available  bool
}

var ticketTypes = map[string]ticketType{
	TicketGeneral:   {name: "General Admission", multiplier: 1, available: true},
	TicketVIP:       {name: "VIP Pass", multiplier: 2.25, available: true},
	TicketEarlyBird: {name: "Early Bird", multiplier: 0.75, available: false},
}

// Price bands accepted by Search.
const (
	PriceAll      = "all"
	PriceFree     = "free"
	PriceUnder50  = "under50"
	PriceUnder100 = "under100"
	PriceOver100  = "over100"
)

const dateLayout = "2006-01-02"

// Config holds the booking rules.
type Config struct {
	ServiceFee           float64
	MaxTicketsPerBooking int
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithClock replaces time.Now for booking dates and the upcoming count.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) { s.now = now }
}

// BookingService orchestrates sessions, events, bookings and wishlists.
type BookingService struct {
	cfg      Config
	validate *validator.Validate
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewBookingService constructs a BookingService with its dependencies.
// m may be nil.
func NewBookingService(cfg Config, m *metrics.Metrics, log logrus.FieldLogger, opts ...Option) *BookingService {
	if cfg.MaxTicketsPerBooking <= 0 {
		cfg.MaxTicketsPerBooking = 10
	}
	s := &BookingService{
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Session ──────────────────────────────────────────────────────────────────

// Login validates credentials and starts a session.
func (s *BookingService) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := s.check(req); err != nil {
		return nil, err
	}
	return store.MustFromContext(ctx).Login(ctx, req.Email, req.Password, model.ParseRole(req.Role))
}

// Signup validates the registration and starts a session.
func (s *BookingService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := s.check(req); err != nil {
		return nil, err
	}
	return store.MustFromContext(ctx).Signup(ctx, req.Name, req.Email, req.Password, model.ParseRole(req.Role))
}

// Logout ends the session.
func (s *BookingService) Logout(ctx context.Context) error {
	return store.MustFromContext(ctx).Logout(ctx)
}

// Dashboard returns the session user's bookings, wishlist and the number of
// bookings for events that have not happened yet.
func (s *BookingService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	st := store.MustFromContext(ctx)
	u, err := s.requireUser(st)
	if err != nil {
		return nil, err
	}

	bookings := st.UserBookings(u.ID)
	today := s.now().UTC().Format(dateLayout)
	upcoming := 0
	for _, b := range bookings {
		// Both sides are YYYY-MM-DD, so string order is date order.
		if b.EventDate > today {
			upcoming++
		}
	}
	return &model.Dashboard{
		User:             u,
		Bookings:         bookings,
		Wishlist:         st.Wishlist(),
		UpcomingBookings: upcoming,
	}, nil
}

// UpdateProfile patches the session user.
func (s *BookingService) UpdateProfile(ctx context.Context, patch model.UserPatch) (*model.User, error) {
	st := store.MustFromContext(ctx)
	if _, err := s.requireUser(st); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		patch.Name = &name
	}
	if patch.Email != nil {
		if err := s.validate.Var(*patch.Email, "required,email"); err != nil {
			return nil, fmt.Errorf("%w: email: %v", ErrInvalidInput, err)
		}
	}
	if patch.Role != nil {
		role := model.ParseRole(string(*patch.Role))
		patch.Role = &role
	}
	if err := st.UpdateProfile(ctx, patch); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return st.User(), nil
}

// ─── Events ───────────────────────────────────────────────────────────────────

// Search returns the events matching every criterion of f.
func (s *BookingService) Search(ctx context.Context, f model.SearchFilter) []model.Event {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := []model.Event{}
	for _, e := range store.MustFromContext(ctx).Events() {
		if term != "" &&
			!strings.Contains(strings.ToLower(e.Title), term) &&
			!strings.Contains(strings.ToLower(e.Description), term) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(f.Category, "all") && !strings.EqualFold(f.Category, e.Category) {
			continue
		}
		if !inPriceBand(e.Price, f.Price) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func inPriceBand(price float64, band string) bool {
	switch strings.ToLower(band) {
	case PriceFree:
		return price == 0
	case PriceUnder50:
		return price < 50
	case PriceUnder100:
		return price < 100
	case PriceOver100:
		return price >= 100
	default:
		return true
	}
}

// GetEvent returns a single event by ID.
func (s *BookingService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, ok := store.MustFromContext(ctx).Event(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

// CreateEvent validates the request and publishes it under the session
// organizer.
func (s *BookingService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	st := store.MustFromContext(ctx)
	if _, err := s.requireOrganizer(st); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.Location = strings.TrimSpace(req.Location)
	if err := s.check(req); err != nil {
		return nil, err
	}

	e, err := st.CreateEvent(ctx, model.NewEvent{
		Title:        req.Title,
		Description:  strings.TrimSpace(req.Description),
		Category:     req.Category,
		Date:         req.Date,
		Time:         req.Time,
		Location:     req.Location,
		Price:        req.Price,
		MaxAttendees: req.MaxAttendees,
		Image:        req.Image,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	if e == nil {
		// Session ended between the check and the write.
		return nil, ErrNotAuthenticated
	}
	return e, nil
}

// UpdateEvent patches an event owned by the session organizer.
func (s *BookingService) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error) {
	st := store.MustFromContext(ctx)
	if _, err := s.requireOwner(st, id); err != nil {
		return nil, err
	}
	if err := s.check(patch); err != nil {
		return nil, err
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}

	found, err := st.UpdateEvent(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	e, _ := st.Event(id)
	return &e, nil
}

// DeleteEvent removes an event owned by the session organizer together with
// its bookings and wishlist entries.
func (s *BookingService) DeleteEvent(ctx context.Context, id string) error {
	st := store.MustFromContext(ctx)
	if _, err := s.requireOwner(st, id); err != nil {
		return err
	}
	if _, err := st.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.WithField("event_id", id).Info("event deleted")
	return nil
}

// EventBookings lists the bookings of an event owned by the session
// organizer.
func (s *BookingService) EventBookings(ctx context.Context, id string) ([]model.Booking, error) {
	st := store.MustFromContext(ctx)
	if _, err := s.requireOwner(st, id); err != nil {
		return nil, err
	}
	return st.GetEventBookings(id), nil
}

// OrganizerStats aggregates the session organizer's events.
func (s *BookingService) OrganizerStats(ctx context.Context) (model.OrganizerStats, error) {
	st := store.MustFromContext(ctx)
	if _, err := s.requireOrganizer(st); err != nil {
		return model.OrganizerStats{}, err
	}
	return st.GetOrganizerStats(), nil
}

// ─── Bookings ─────────────────────────────────────────────────────────────────

// Quote returns the unit price of a ticket type and the total charged for
// quantity tickets, service fee included. Free events carry no fee.
func (s *BookingService) Quote(e model.Event, ticket string, quantity int) (unit, total float64, err error) {
	tt, ok := ticketTypes[ticket]
	if !ok || !tt.available {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTicketType, ticket)
	}
	unit = math.Round(e.Price * tt.multiplier)
	total = unit * float64(quantity)
	if total > 0 {
		total += s.cfg.ServiceFee
	}
	return unit, total, nil
}

// Book sells quantity tickets of an event to the session user.
func (s *BookingService) Book(ctx context.Context, eventID string, req model.BookRequest) (*model.Booking, error) {
	st := store.MustFromContext(ctx)
	u, err := s.requireUser(st)
	if err != nil {
		return nil, err
	}

	if req.TicketType == "" {
		req.TicketType = TicketGeneral
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	if req.Quantity > s.cfg.MaxTicketsPerBooking {
		return nil, fmt.Errorf("%w: at most %d tickets per booking", ErrInvalidInput, s.cfg.MaxTicketsPerBooking)
	}

	e, ok := st.Event(eventID)
	if !ok {
		return nil, ErrNotFound
	}
	if !e.IsBookable() || e.Remaining() < req.Quantity {
		return nil, ErrEventFull
	}
	_, total, err := s.Quote(e, req.TicketType, req.Quantity)
	if err != nil {
		return nil, err
	}

	b := model.Booking{
		ID:            uuid.NewString(),
		EventID:       e.ID,
		EventTitle:    e.Title,
		EventDate:     e.Date,
		EventTime:     e.Time,
		Location:      e.Location,
		Image:         e.Image,
		TicketType:    ticketTypes[req.TicketType].name,
		Quantity:      req.Quantity,
		TotalPaid:     total,
		BookingDate:   s.now().UTC(),
		Status:        model.BookingConfirmed,
		ReferenceCode: referenceCode(),
		UserID:        u.ID,
		UserName:      u.Name,
	}
	booked, err := st.ReserveBooking(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("book event: %w", err)
	}
	if !booked {
		// Another booking or an edit won the race since the check above.
		if _, ok := st.Event(eventID); !ok {
			return nil, ErrNotFound
		}
		return nil, ErrEventFull
	}
	s.metrics.RecordBooking(b.Quantity)

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"event_id":   b.EventID,
		"user_id":    b.UserID,
		"quantity":   b.Quantity,
		"total_paid": b.TotalPaid,
	}).Info("booking confirmed")
	return &b, nil
}

// referenceCode is the short human-facing code printed on tickets.
func referenceCode() string {
	return "BK" + strings.ToUpper(shortuuid.New()[:9])
}

// CancelBooking cancels a booking owned by the session user.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) error {
	st := store.MustFromContext(ctx)
	u, err := s.requireUser(st)
	if err != nil {
		return err
	}
	b, ok := st.Booking(bookingID)
	if !ok {
		return ErrNotFound
	}
	if b.UserID != u.ID {
		return ErrForbidden
	}

	found, err := st.CancelBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	s.metrics.RecordCancellation()
	s.log.WithField("booking_id", bookingID).Info("booking cancelled")
	return nil
}

// MyBookings lists the session user's bookings.
func (s *BookingService) MyBookings(ctx context.Context) ([]model.Booking, error) {
	st := store.MustFromContext(ctx)
	u, err := s.requireUser(st)
	if err != nil {
		return nil, err
	}
	return st.UserBookings(u.ID), nil
}

// ─── Wishlist ─────────────────────────────────────────────────────────────────

// Wishlist lists the saved events.
func (s *BookingService) Wishlist(ctx context.Context) ([]model.WishlistItem, error) {
	st := store.MustFromContext(ctx)
	if _, err := s.requireUser(st); err != nil {
		return nil, err
	}
	return st.Wishlist(), nil
}

// ToggleWishlist saves or unsaves an event and reports whether it is saved
// afterwards.
func (s *BookingService) ToggleWishlist(ctx context.Context, eventID string) (bool, error) {
	st := store.MustFromContext(ctx)
	if _, err := s.requireUser(st); err != nil {
		return false, err
	}
	e, ok := st.Event(eventID)
	if !ok {
		return false, ErrNotFound
	}
	saved, err := st.ToggleWishlist(ctx, model.WishlistItemFrom(e))
	if err != nil {
		return false, fmt.Errorf("toggle wishlist: %w", err)
	}
	return saved, nil
}

// Snapshot returns the raw store content.
func (s *BookingService) Snapshot(ctx context.Context) model.StateSnapshot {
	return store.MustFromContext(ctx).Snapshot()
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func (s *BookingService) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (s *BookingService) requireUser(st *store.Store) (*model.User, error) {
	u := st.User()
	if u == nil {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

func (s *BookingService) requireOrganizer(st *store.Store) (*model.User, error) {
	u, err := s.requireUser(st)
	if err != nil {
		return nil, err
	}
	if !u.IsOrganizer() {
		return nil, ErrForbidden
	}
	return u, nil
}

// requireOwner checks that the session organizer owns the event.
func (s *BookingService) requireOwner(st *store.Store, eventID string) (*model.User, error) {
	u, err := s.requireOrganizer(st)
	if err != nil {
		return nil, err
	}
	e, ok := st.Event(eventID)
	if !ok {
		return nil, ErrNotFound
	}
	if e.OrganizerID != u.ID {
		return nil, ErrForbidden
	}
	return u, nil
}
