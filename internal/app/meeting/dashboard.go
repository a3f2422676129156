package meeting

import (
	"context"
	"sync"

	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Dashboard is the meeting selection view: create, join or log out.
type Dashboard struct {
	Identity  core.IdentityProvider
	Meetings  *app.MeetingService
	Navigator core.Navigator

	mu  sync.Mutex
	msg string
}

// Error is the inline message of the last failed action.
func (d *Dashboard) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.msg
}

func (d *Dashboard) fail(err error) error {
	d.mu.Lock()
	d.msg = domain.UserMessage(err)
	d.mu.Unlock()
	return err
}

func (d *Dashboard) clear() {
	d.mu.Lock()
	d.msg = ""
	d.mu.Unlock()
}

func (d *Dashboard) identity(ctx context.Context) (*domain.Identity, error) {
	who, err := d.Identity.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if who == nil {
		navigate(d.Navigator, domain.RouteLogin)
		return nil, domain.ErrAuthenticationRequired
	}
	return who, nil
}

// GenerateCode proposes a fresh code for the create form.
func (d *Dashboard) GenerateCode() (domain.MeetingCode, error) {
	return d.Meetings.Codes.Generate()
}

// CreateMeeting creates and opens a meeting. An empty customCode gets a
// generated one; an empty title gets the default.
func (d *Dashboard) CreateMeeting(ctx context.Context, title, customCode string) (*domain.Meeting, error) {
	d.clear()
	who, err := d.identity(ctx)
	if err != nil {
		return nil, err
	}
	m, err := d.Meetings.Create(ctx, who, title, customCode)
	if err != nil {
		return nil, d.fail(err)
	}
	navigate(d.Navigator, domain.MeetingRoute(m.Code))
	return m, nil
}

// JoinMeeting opens the room for code when it names an active meeting.
// Otherwise the user stays here with an inline message.
func (d *Dashboard) JoinMeeting(ctx context.Context, code string) (*domain.Meeting, error) {
	d.clear()
	if _, err := d.identity(ctx); err != nil {
		return nil, err
	}
	m, err := d.Meetings.FindActive(ctx, code)
	if err != nil {
		return nil, d.fail(err)
	}
	navigate(d.Navigator, domain.MeetingRoute(m.Code))
	return m, nil
}

func (d *Dashboard) Logout(ctx context.Context) error {
	if err := d.Identity.SignOut(ctx); err != nil {
		return d.fail(err)
	}
	navigate(d.Navigator, domain.RouteLogin)
	return nil
}
