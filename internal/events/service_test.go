package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVenues map[string]bool

func (s stubVenues) IsVenueApproved(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

func newTestService() Service {
	svc := NewService(NewMemoryRepository())
	svc.SetVenueChecker(stubVenues{"v-ok": true, "v-pending": false})
	return svc
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateEvent(ctx, "org", CreateEventInput{Name: "Show", VenueID: "v-ok", ShowTime: time.Now().Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrShowTimeInPast)

	_, err = svc.CreateEvent(ctx, "org", CreateEventInput{Name: "Show", VenueID: "v-pending", ShowTime: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrVenueNotApproved)

	_, err = svc.CreateEvent(ctx, "org", CreateEventInput{Name: " ", VenueID: "v-ok", ShowTime: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	event, err := svc.CreateEvent(ctx, "org", CreateEventInput{Name: "Show", VenueID: "v-ok", ShowTime: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, event.StatusAt(time.Now()))

	active, err := svc.IsActive(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, active, "pending events are not on sale")

	organizer, err := svc.EventOrganizer(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "org", organizer)
}

func TestApproveRejectCancel(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	show := time.Now().Add(24 * time.Hour)

	a, err := svc.CreateEvent(ctx, "org", CreateEventInput{Name: "A", VenueID: "v-ok", ShowTime: show})
	require.NoError(t, err)
	b, err := svc.CreateEvent(ctx, "org", CreateEventInput{Name: "B", VenueID: "v-ok", ShowTime: show})
	require.NoError(t, err)

	_, err = svc.ApproveEvent(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.ApproveEvent(ctx, a.ID)
	assert.ErrorIs(t, err, ErrEventNotPending)

	rejected, err := svc.RejectEvent(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.StatusAt(time.Now()))

	active, err := svc.ListEvents(ctx, ListQuery{OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	cancelled, err := svc.CancelEvent(ctx, a.ID, "storm")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.StatusAt(time.Now()))
	_, err = svc.CancelEvent(ctx, a.ID, "again")
	assert.ErrorIs(t, err, ErrEventCancelled)

	isActive, err := svc.IsActive(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, isActive)

	_, err = svc.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventStatusAt(t *testing.T) {
	now := time.Now()
	e := &Event{Approved: true, ShowTime: now.Add(-time.Minute)}
	assert.Equal(t, StatusFinished, e.StatusAt(now))
	assert.False(t, e.IsActiveAt(now))

	e.ShowTime = now.Add(time.Minute)
	assert.Equal(t, StatusApproved, e.StatusAt(now))
	assert.True(t, e.IsActiveAt(now))
}
