package store

import (
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// StarterCatalog returns the events written to storage on first run.
func StarterCatalog() []model.Event {
	return []model.Event{
		{
			ID:             "1",
			Title:          "Summer Music Festival 2024",
			Description:    "Join us for an unforgettable night of music with top artists from around the world.",
			Category:       "Music",
			Date:           "2024-08-15",
			Time:           "18:00",
			Location:       "Central Park, New York",
			Price:          89,
			MaxAttendees:   2000,
			Image:          "https://images.unsplash.com/photo-1459749411175-04bf5292ceea?w=500",
			OrganizerID:    "org1",
			OrganizerName:  "Music Events Co.",
			Status:         model.EventActive,
			AttendeesCount: 1250,
			Earnings:       111250,
			CreatedAt:      time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:             "2",
			Title:          "Tech Innovation Conference",
			Description:    "Discover the latest trends in technology and connect with industry leaders.",
			Category:       "Conference",
			Date:           "2024-08-20",
			Time:           "09:00",
			Location:       "Convention Center, San Francisco",
			Price:          199,
			MaxAttendees:   1000,
			Image:          "https://images.unsplash.com/photo-1505373877841-8d25f7d46678?w=500",
			OrganizerID:    "org2",
			OrganizerName:  "TechEvents Inc.",
			Status:         model.EventActive,
			AttendeesCount: 850,
			Earnings:       169150,
			CreatedAt:      time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:             "3",
			Title:          "Comedy Night Special",
			Description:    "Laugh until your sides hurt with our lineup of incredible comedians.",
			Category:       "Comedy",
			Date:           "2024-08-12",
			Time:           "20:00",
			Location:       "Comedy Club Downtown",
			Price:          45,
			MaxAttendees:   150,
			Image:          "https://images.unsplash.com/photo-1527224538127-2104bb71c51b?w=500",
			OrganizerID:    "org3",
			OrganizerName:  "Laugh Factory",
			Status:         model.EventActive,
			AttendeesCount: 120,
			Earnings:       5400,
			CreatedAt:      time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:             "4",
			Title:          "Art Gallery Opening",
			Description:    "Experience contemporary art from emerging local artists in an intimate setting.",
			Category:       "Art",
			Date:           "2024-08-18",
			Time:           "19:00",
			Location:       "Modern Art Gallery",
			Price:          25,
			MaxAttendees:   200,
			Image:          "https://images.unsplash.com/photo-1460661419201-fd4cecdf8a8b?w=500",
			OrganizerID:    "org4",
			OrganizerName:  "Gallery Events",
			Status:         model.EventActive,
			AttendeesCount: 80,
			Earnings:       2000,
			CreatedAt:      time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}
