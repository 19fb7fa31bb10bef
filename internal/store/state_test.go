package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

func festival(maxAttendees, attendees int) model.Event {
	return model.Event{
		ID:             "1",
		Title:          "Summer Music Festival 2024",
		Price:          89,
		MaxAttendees:   maxAttendees,
		AttendeesCount: attendees,
		Earnings:       float64(attendees) * 89,
		Status:         model.EventActive,
	}
}

func TestApplyBooking_NotSoldOut(t *testing.T) {
	events := []model.Event{festival(2000, 1250)}
	b := model.Booking{ID: "b1", EventID: "1", Quantity: 2, TotalPaid: 178}

	newEvents, newBookings := ApplyBooking(events, nil, b)

	require.Len(t, newBookings, 1)
	assert.Equal(t, 1252, newEvents[0].AttendeesCount)
	assert.Equal(t, 111428.0, newEvents[0].Earnings)
	assert.Equal(t, model.EventActive, newEvents[0].Status)

	assert.Equal(t, 1250, events[0].AttendeesCount, "input must not be modified")
}

func TestApplyBooking_ReachesCapacity(t *testing.T) {
	events := []model.Event{festival(1252, 1250)}
	b := model.Booking{ID: "b1", EventID: "1", Quantity: 2, TotalPaid: 178}

	newEvents, _ := ApplyBooking(events, nil, b)
	assert.Equal(t, 1252, newEvents[0].AttendeesCount)
	assert.Equal(t, model.EventSoldOut, newEvents[0].Status)
}

func TestApplyThenReverse_RestoresCounters(t *testing.T) {
	cases := []struct {
		name  string
		event model.Event
		b     model.Booking
	}{
		{"partial", festival(2000, 1250), model.Booking{ID: "b1", EventID: "1", Quantity: 2, TotalPaid: 178}},
		{"fills up", festival(10, 7), model.Booking{ID: "b2", EventID: "1", Quantity: 3, TotalPaid: 267}},
		{"free", festival(50, 0), model.Booking{ID: "b3", EventID: "1", Quantity: 1, TotalPaid: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := []model.Event{tc.event}
			events, bookings := ApplyBooking(before, nil, tc.b)
			events, bookings, found := ReverseBooking(events, bookings, tc.b.ID)

			require.True(t, found)
			assert.Empty(t, bookings)
			assert.Equal(t, tc.event.AttendeesCount, events[0].AttendeesCount)
			assert.Equal(t, tc.event.Earnings, events[0].Earnings)
			assert.Equal(t, model.EventActive, events[0].Status)
		})
	}
}

func TestReverseBooking_ClampsAtZero(t *testing.T) {
	events := []model.Event{{ID: "9", MaxAttendees: 10, AttendeesCount: 1, Earnings: 20, Status: model.EventActive}}
	bookings := []model.Booking{{ID: "b1", EventID: "9", Quantity: 5, TotalPaid: 100}}

	events, _, found := ReverseBooking(events, bookings, "b1")
	require.True(t, found)
	assert.Equal(t, 0, events[0].AttendeesCount)
	assert.Equal(t, 0.0, events[0].Earnings)
}

func TestReverseBooking_Unknown(t *testing.T) {
	events := []model.Event{festival(100, 10)}
	bookings := []model.Booking{{ID: "b1", EventID: "1", Quantity: 1}}

	gotEvents, gotBookings, found := ReverseBooking(events, bookings, "nope")
	assert.False(t, found)
	assert.Equal(t, events, gotEvents)
	assert.Equal(t, bookings, gotBookings)
}

func TestReconcileStatus(t *testing.T) {
	assert.Equal(t, model.EventSoldOut, ReconcileStatus(model.Event{MaxAttendees: 5, AttendeesCount: 5, Status: model.EventActive}))
	assert.Equal(t, model.EventActive, ReconcileStatus(model.Event{MaxAttendees: 5, AttendeesCount: 4, Status: model.EventSoldOut}))
	assert.Equal(t, model.EventCancelled, ReconcileStatus(model.Event{MaxAttendees: 5, AttendeesCount: 0, Status: model.EventCancelled}))
}

func TestToggleWishlist_DoubleToggle(t *testing.T) {
	item := model.WishlistItem{ID: "3", Title: "Comedy Night Special"}

	assert.False(t, InWishlist(nil, "3"))
	items, added := ToggleWishlist(nil, item)
	assert.True(t, added)
	assert.True(t, InWishlist(items, "3"))

	items, added = ToggleWishlist(items, item)
	assert.False(t, added)
	assert.False(t, InWishlist(items, "3"))
	assert.Empty(t, items)
}

func TestStampEvent(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	owner := model.User{ID: "org1", Name: "Event Organizer", Role: model.RoleOrganizer}

	e := StampEvent(model.NewEvent{Title: "Jazz Brunch", MaxAttendees: 40, Price: 30}, owner, "42", now)

	assert.Equal(t, "42", e.ID)
	assert.Equal(t, "org1", e.OrganizerID)
	assert.Equal(t, "Event Organizer", e.OrganizerName)
	assert.Equal(t, model.EventActive, e.Status)
	assert.Zero(t, e.AttendeesCount)
	assert.Zero(t, e.Earnings)
	assert.Equal(t, now, e.CreatedAt)
}

func TestPatchEvent(t *testing.T) {
	events := []model.Event{festival(2000, 1250)}
	title := "Summer Music Festival 2024 (moved)"
	capacity := 1250

	out, found := PatchEvent(events, "1", model.EventPatch{Title: &title, MaxAttendees: &capacity})
	require.True(t, found)
	assert.Equal(t, title, out[0].Title)
	assert.Equal(t, model.EventSoldOut, out[0].Status, "shrinking capacity recomputes status")
	assert.Equal(t, "Summer Music Festival 2024", events[0].Title)

	_, found = PatchEvent(events, "missing", model.EventPatch{Title: &title})
	assert.False(t, found)
}

func TestPatchEvent_StatusFollowsCounters(t *testing.T) {
	events := []model.Event{festival(2000, 10)}
	soldOut := model.EventSoldOut
	cancelled := model.EventCancelled

	out, _ := PatchEvent(events, "1", model.EventPatch{Status: &soldOut})
	assert.Equal(t, model.EventActive, out[0].Status)

	out, _ = PatchEvent(events, "1", model.EventPatch{Status: &cancelled})
	assert.Equal(t, model.EventCancelled, out[0].Status)
}

func TestRemoveEvent_Cascades(t *testing.T) {
	s := State{
		Events: []model.Event{{ID: "1"}, {ID: "2"}},
		Bookings: []model.Booking{
			{ID: "b1", EventID: "1"},
			{ID: "b2", EventID: "2"},
			{ID: "b3", EventID: "1"},
		},
		Wishlist: []model.WishlistItem{{ID: "1"}, {ID: "2"}},
	}

	out, found := RemoveEvent(s, "1")
	require.True(t, found)
	assert.Equal(t, []model.Event{{ID: "2"}}, out.Events)
	assert.Empty(t, BookingsForEvent(out.Bookings, "1"))
	assert.False(t, InWishlist(out.Wishlist, "1"))
	assert.Len(t, out.Bookings, 1)
	assert.Len(t, s.Bookings, 3, "input must not be modified")
}

func TestRemoveEvent_DanglingReferences(t *testing.T) {
	s := State{
		Bookings: []model.Booking{{ID: "b1", EventID: "gone"}},
		Wishlist: []model.WishlistItem{{ID: "gone"}},
	}
	out, found := RemoveEvent(s, "gone")
	assert.False(t, found)
	assert.Empty(t, out.Bookings)
	assert.Empty(t, out.Wishlist)
}

func TestStatsFor(t *testing.T) {
	org := &model.User{ID: "org1", Role: model.RoleOrganizer}
	events := []model.Event{
		{ID: "a", OrganizerID: "org1", AttendeesCount: 10, Earnings: 500, Status: model.EventActive},
		{ID: "b", OrganizerID: "org1", AttendeesCount: 5, Earnings: 0, Status: model.EventSoldOut},
		{ID: "c", OrganizerID: "org2", AttendeesCount: 99, Earnings: 999, Status: model.EventActive},
	}

	assert.Equal(t, model.OrganizerStats{TotalEvents: 2, TotalTicketsSold: 15, TotalEarnings: 500, ActiveEvents: 1}, StatsFor(events, org))
	assert.Equal(t, model.OrganizerStats{}, StatsFor(events, nil))
	assert.Equal(t, model.OrganizerStats{}, StatsFor(events, &model.User{ID: "org1", Role: model.RoleAttendee}))
}

func TestMergeUser(t *testing.T) {
	name := "Jane Roe"
	u := MergeUser(model.User{ID: "user1", Name: "John Doe", Email: "jd@example.com"}, model.UserPatch{Name: &name})
	assert.Equal(t, "Jane Roe", u.Name)
	assert.Equal(t, "jd@example.com", u.Email)
}
