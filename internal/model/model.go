// Package model defines the core domain types for the event booking system.
package model

import (
	"strings"
	"time"
)

// Role distinguishes ticket buyers from event organizers.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
)

// ParseRole maps free-form input onto a Role. The legacy value "user" is
// accepted as an attendee; anything unknown falls back to attendee too.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleOrganizer):
		return RoleOrganizer
	default:
		return RoleAttendee
	}
}

// User is the identity held as the current session.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// IsOrganizer reports whether the user may manage events.
func (u *User) IsOrganizer() bool {
	return u != nil && u.Role == RoleOrganizer
}

// UserPatch is a partial profile update; nil fields are left untouched.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *Role   `json:"role,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventSoldOut   EventStatus = "sold-out"
	EventCancelled EventStatus = "cancelled"
)

// Event represents a bookable event created by an organizer.
type Event struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	Date           string      `json:"date"`
	Time           string      `json:"time"`
	Location       string      `json:"location"`
	Price          float64     `json:"price"`
	MaxAttendees   int         `json:"max_attendees"`
	Image          string      `json:"image"`
	OrganizerID    string      `json:"organizer_id"`
	OrganizerName  string      `json:"organizer_name"`
	Status         EventStatus `json:"status"`
	AttendeesCount int         `json:"attendees_count"`
	Earnings       float64     `json:"earnings"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	if r := e.MaxAttendees - e.AttendeesCount; r > 0 {
		return r
	}
	return 0
}

// IsSoldOut reports whether the attendee count has reached capacity.
// It is computed from the counters, never from Status.
func (e *Event) IsSoldOut() bool {
	return e.AttendeesCount >= e.MaxAttendees
}

// IsBookable returns true when tickets can still be sold.
func (e *Event) IsBookable() bool {
	return e.Status != EventCancelled && !e.IsSoldOut()
}

// NewEvent is the organizer-supplied part of an event. Identity, ownership,
// counters and status are always stamped by the store.
type NewEvent struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Location     string  `json:"location"`
	Price        float64 `json:"price"`
	MaxAttendees int     `json:"max_attendees"`
	Image        string  `json:"image"`
}

// EventPatch is a partial event update; nil fields are left untouched.
type EventPatch struct {
	Title        *string      `json:"title,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Category     *string      `json:"category,omitempty"`
	Date         *string      `json:"date,omitempty"`
	Time         *string      `json:"time,omitempty"`
	Location     *string      `json:"location,omitempty"`
	Price        *float64     `json:"price,omitempty"`
	MaxAttendees *int         `json:"max_attendees,omitempty" validate:"omitempty,gt=0"`
	Image        *string      `json:"image,omitempty"`
	Status       *EventStatus `json:"status,omitempty" validate:"omitempty,oneof=active sold-out cancelled"`
}

// BookingStatus is the state of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a ticket purchase. Event fields are copied at creation time so
// the booking keeps describing what was paid for after the event changes.
type Booking struct {
	ID            string        `json:"id"`
	EventID       string        `json:"event_id"`
	EventTitle    string        `json:"event_title"`
	EventDate     string        `json:"event_date"`
	EventTime     string        `json:"event_time"`
	Location      string        `json:"location"`
	Image         string        `json:"image"`
	TicketType    string        `json:"ticket_type"`
	Quantity      int           `json:"quantity"`
	TotalPaid     float64       `json:"total_paid"`
	BookingDate   time.Time     `json:"booking_date"`
	Status        BookingStatus `json:"status"`
	ReferenceCode string        `json:"reference_code"`
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name"`
}

// WishlistItem is a saved event. ID is the event id.
type WishlistItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
}

// WishlistItemFrom projects an event onto a wishlist entry.
func WishlistItemFrom(e Event) WishlistItem {
	return WishlistItem{
		ID:       e.ID,
		Title:    e.Title,
		Date:     e.Date,
		Location: e.Location,
		Price:    e.Price,
		Image:    e.Image,
	}
}

// OrganizerStats aggregates the events owned by an organizer.
type OrganizerStats struct {
	TotalEvents      int     `json:"total_events"`
	TotalTicketsSold int     `json:"total_tickets_sold"`
	TotalEarnings    float64 `json:"total_earnings"`
	ActiveEvents     int     `json:"active_events"`
}

// ─── Request payloads ─────────────────────────────────────────────────────────

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// SignupRequest is the payload for POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	Category     string  `json:"category" validate:"required"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string  `json:"time" validate:"required,datetime=15:04"`
	Location     string  `json:"location" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	MaxAttendees int     `json:"max_attendees" validate:"gt=0,lte=100000"`
	Image        string  `json:"image"`
}

// BookRequest is the payload for booking tickets for an event.
type BookRequest struct {
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
}

// SearchFilter narrows the event listing.
type SearchFilter struct {
	Term     string
	Category string
	Price    string
}

// Dashboard is the attendee overview returned by GET /api/me.
type Dashboard struct {
	User             *User          `json:"user"`
	Bookings         []Booking      `json:"bookings"`
	Wishlist         []WishlistItem `json:"wishlist"`
	UpcomingBookings int            `json:"upcoming_bookings"`
}

// StateSnapshot is the raw content of the store.
type StateSnapshot struct {
	User     *User          `json:"user"`
	Events   []Event        `json:"events"`
	Bookings []Booking      `json:"bookings"`
	Wishlist []WishlistItem `json:"wishlist"`
	Loading  bool           `json:"loading"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
