// Package auth is the identity-provider boundary. The only implementation
// is a simulation: it waits a fixed delay and always succeeds.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// Authenticator resolves credentials into a user record.
type Authenticator interface {
	Login(ctx context.Context, email, password string, role model.Role) (*model.User, error)
	Signup(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
}

const defaultAvatar = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?ixlib=rb-1.2.1&auto=format&fit=facearea&facepad=2&w=256&h=256&q=80"

// Simulated fabricates users without checking any credential store.
type Simulated struct {
	Delay time.Duration
}

// NewSimulated returns a Simulated authenticator with the given latency.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{Delay: delay}
}

// Login returns the role's default identity carrying the given email.
func (s *Simulated) Login(ctx context.Context, email, _ string, role model.Role) (*model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	u := identityFor(role)
	u.Email = strings.TrimSpace(email)
	return u, nil
}

// Signup is Login with a caller supplied display name.
func (s *Simulated) Signup(ctx context.Context, name, email, _ string, role model.Role) (*model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	u := identityFor(role)
	u.Name = strings.TrimSpace(name)
	u.Email = strings.TrimSpace(email)
	return u, nil
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// identityFor is the fixed identity handed out per role. Organizer "org1"
// owns the first starter event.
func identityFor(role model.Role) *model.User {
	if role == model.RoleOrganizer {
		return &model.User{ID: "org1", Name: "Event Organizer", Role: model.RoleOrganizer, Avatar: defaultAvatar}
	}
	return &model.User{ID: "user1", Name: "John Doe", Role: model.RoleAttendee, Avatar: defaultAvatar}
}
