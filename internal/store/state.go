package store

import (
	"slices"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// State is the full content of the store. Transition functions below never
// modify their inputs; they return fresh slices.
type State struct {
	User     *model.User
	Events   []model.Event
	Bookings []model.Booking
	Wishlist []model.WishlistItem
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Events:   slices.Clone(s.Events),
		Bookings: slices.Clone(s.Bookings),
		Wishlist: slices.Clone(s.Wishlist),
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// ReconcileStatus derives an event's status from its counters. Cancelled
// events stay cancelled.
func ReconcileStatus(e model.Event) model.EventStatus {
	switch {
	case e.Status == model.EventCancelled:
		return model.EventCancelled
	case e.IsSoldOut():
		return model.EventSoldOut
	default:
		return model.EventActive
	}
}

// ApplyBooking appends b and credits its quantity and payment to the event
// it references.
func ApplyBooking(events []model.Event, bookings []model.Booking, b model.Booking) ([]model.Event, []model.Booking) {
	newBookings := append(slices.Clone(bookings), b)

	newEvents := slices.Clone(events)
	for i := range newEvents {
		e := &newEvents[i]
		if e.ID != b.EventID {
			continue
		}
		e.AttendeesCount += b.Quantity
		e.Earnings += b.TotalPaid
		e.Status = ReconcileStatus(*e)
	}
	return newEvents, newBookings
}

// ReverseBooking removes the booking with the given id and debits the event
// it references, clamping counters at zero. found is false when no booking
// matches; the inputs are then returned unchanged.
func ReverseBooking(events []model.Event, bookings []model.Booking, bookingID string) (newEvents []model.Event, newBookings []model.Booking, found bool) {
	idx := slices.IndexFunc(bookings, func(b model.Booking) bool { return b.ID == bookingID })
	if idx < 0 {
		return events, bookings, false
	}
	b := bookings[idx]

	newEvents = slices.Clone(events)
	for i := range newEvents {
		e := &newEvents[i]
		if e.ID != b.EventID {
			continue
		}
		e.AttendeesCount = max(0, e.AttendeesCount-b.Quantity)
		e.Earnings = max(0, e.Earnings-b.TotalPaid)
		e.Status = ReconcileStatus(*e)
	}

	newBookings = slices.Delete(slices.Clone(bookings), idx, idx+1)
	return newEvents, newBookings, true
}

// ToggleWishlist removes the entry with item.ID if present, otherwise
// appends item.
func ToggleWishlist(items []model.WishlistItem, item model.WishlistItem) (out []model.WishlistItem, added bool) {
	if InWishlist(items, item.ID) {
		return slices.DeleteFunc(slices.Clone(items), func(w model.WishlistItem) bool { return w.ID == item.ID }), false
	}
	return append(slices.Clone(items), item), true
}

// InWishlist reports whether eventID is saved.
func InWishlist(items []model.WishlistItem, eventID string) bool {
	return slices.ContainsFunc(items, func(w model.WishlistItem) bool { return w.ID == eventID })
}

// StampEvent builds a new event owned by owner. Counters start at zero and
// the status is active whatever the payload says.
func StampEvent(data model.NewEvent, owner model.User, id string, now time.Time) model.Event {
	return model.Event{
		ID:             id,
		Title:          data.Title,
		Description:    data.Description,
		Category:       data.Category,
		Date:           data.Date,
		Time:           data.Time,
		Location:       data.Location,
		Price:          data.Price,
		MaxAttendees:   data.MaxAttendees,
		Image:          data.Image,
		OrganizerID:    owner.ID,
		OrganizerName:  owner.Name,
		Status:         model.EventActive,
		AttendeesCount: 0,
		Earnings:       0,
		CreatedAt:      now.UTC(),
	}
}

// PatchEvent merges patch into the event with the given id. Bookings and
// wishlist entries keep their own copies of the old values.
func PatchEvent(events []model.Event, eventID string, patch model.EventPatch) ([]model.Event, bool) {
	idx := slices.IndexFunc(events, func(e model.Event) bool { return e.ID == eventID })
	if idx < 0 {
		return events, false
	}
	out := slices.Clone(events)
	e := &out[idx]

	setIf(&e.Title, patch.Title)
	setIf(&e.Description, patch.Description)
	setIf(&e.Category, patch.Category)
	setIf(&e.Date, patch.Date)
	setIf(&e.Time, patch.Time)
	setIf(&e.Location, patch.Location)
	setIf(&e.Price, patch.Price)
	setIf(&e.MaxAttendees, patch.MaxAttendees)
	setIf(&e.Image, patch.Image)
	setIf(&e.Status, patch.Status)
	e.Status = ReconcileStatus(*e)

	return out, true
}

// RemoveEvent deletes an event together with every booking and wishlist
// entry that references it. found reports whether the event itself existed;
// dangling bookings and wishlist entries are removed either way.
func RemoveEvent(s State, eventID string) (out State, found bool) {
	found = slices.ContainsFunc(s.Events, func(e model.Event) bool { return e.ID == eventID })
	out = s.Clone()
	out.Events = slices.DeleteFunc(out.Events, func(e model.Event) bool { return e.ID == eventID })
	out.Bookings = slices.DeleteFunc(out.Bookings, func(b model.Booking) bool { return b.EventID == eventID })
	out.Wishlist = slices.DeleteFunc(out.Wishlist, func(w model.WishlistItem) bool { return w.ID == eventID })
	return out, found
}

// BookingsForEvent filters bookings by event id.
func BookingsForEvent(bookings []model.Booking, eventID string) []model.Booking {
	out := []model.Booking{}
	for _, b := range bookings {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out
}

// BookingsForUser filters bookings by owner.
func BookingsForUser(bookings []model.Booking, userID string) []model.Booking {
	out := []model.Booking{}
	for _, b := range bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// EventsOwnedBy filters events by organizer id.
func EventsOwnedBy(events []model.Event, organizerID string) []model.Event {
	out := []model.Event{}
	for _, e := range events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out
}

// StatsFor aggregates the events owned by u. Anyone but an organizer gets
// zeros.
func StatsFor(events []model.Event, u *model.User) model.OrganizerStats {
	var stats model.OrganizerStats
	if !u.IsOrganizer() {
		return stats
	}
	for _, e := range EventsOwnedBy(events, u.ID) {
		stats.TotalEvents++
		stats.TotalTicketsSold += e.AttendeesCount
		stats.TotalEarnings += e.Earnings
		if e.Status == model.EventActive {
			stats.ActiveEvents++
		}
	}
	return stats
}

// MergeUser applies a profile patch.
func MergeUser(u model.User, patch model.UserPatch) model.User {
	setIf(&u.Name, patch.Name)
	setIf(&u.Email, patch.Email)
	setIf(&u.Role, patch.Role)
	setIf(&u.Avatar, patch.Avatar)
	return u
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
