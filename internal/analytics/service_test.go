package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boletamaster/internal/events"
	"boletamaster/internal/purchases"
	"boletamaster/internal/shared/constants"
	"boletamaster/internal/venues"
	"boletamaster/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = decimal.NewFromInt

type fakeEvents []events.Event

func (f fakeEvents) GetEvent(_ context.Context, id string) (*events.Event, error) {
	for i := range f {
		if f[i].ID == id {
			e := f[i]
			return &e, nil
		}
	}
	return nil, events.ErrEventNotFound
}

func (f fakeEvents) ListEvents(_ context.Context, q events.ListQuery) ([]events.Event, error) {
	out := []events.Event{}
	for _, e := range f {
		if q.OrganizerLogin != "" && e.OrganizerLogin != q.OrganizerLogin {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeLocalities map[string][]venues.Locality

func (f fakeLocalities) ListLocalities(_ context.Context, eventID string) ([]venues.Locality, error) {
	return append([]venues.Locality(nil), f[eventID]...), nil
}

func seed(t *testing.T) (Service, purchases.Repository) {
	t.Helper()
	ctx := context.Background()
	show := time.Now().Add(72 * time.Hour)
	evs := fakeEvents{
		{ID: "ev-1", Name: "Rock Night", OrganizerLogin: "org", ShowTime: show, Approved: true},
		{ID: "ev-2", Name: "Jazz", OrganizerLogin: "org", ShowTime: show, Approved: true},
		{ID: "ev-3", Name: "Opera", OrganizerLogin: "other", ShowTime: show, Approved: true},
	}
	locs := fakeLocalities{
		"ev-1": {
			{ID: "l-1", EventID: "ev-1", Name: "VIP", Capacity: 10, Available: 7},
			{ID: "l-2", EventID: "ev-1", Name: "General", Capacity: 200, Available: 150},
		},
		"ev-2": {{ID: "l-3", EventID: "ev-2", Name: "Floor", Capacity: 3, Available: 3}},
	}

	repo := purchases.NewMemoryRepository()
	for _, p := range []purchases.Purchase{
		{ID: "p-1", Kind: purchases.KindPrimary, EventID: "ev-1", Subtotal: d(200), ServiceFee: d(20), IssuanceFees: d(10), Total: d(230), Status: purchases.StatusApproved},
		{ID: "p-2", Kind: purchases.KindPrimary, EventID: "ev-1", Subtotal: d(100), ServiceFee: d(10), IssuanceFees: d(5), Total: d(115), Status: purchases.StatusApproved},
		{ID: "p-3", Kind: purchases.KindPrimary, EventID: "ev-3", Subtotal: d(50), ServiceFee: d(5), IssuanceFees: d(5), Total: d(60), Status: purchases.StatusApproved},
		{ID: "p-4", Kind: purchases.KindPrimary, EventID: "ev-3", Subtotal: d(50), ServiceFee: d(5), IssuanceFees: d(5), Total: d(60), Status: purchases.StatusRefunded},
		{ID: "p-5", Kind: purchases.KindResale, EventID: "ev-1", Subtotal: d(300), Total: d(300), Status: purchases.StatusApproved},
	} {
		p := p
		require.NoError(t, repo.Create(ctx, &p))
	}

	return NewService(NewSourceRepository(repo, locs), evs, nil), repo
}

func TestPlatformEarnings(t *testing.T) {
	svc, _ := seed(t)

	out, err := svc.PlatformEarnings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Purchases)
	assert.True(t, out.ServiceFees.Equal(d(35)), out.ServiceFees.String())
	assert.True(t, out.IssuanceFees.Equal(d(20)), out.IssuanceFees.String())
	assert.True(t, out.Total.Equal(d(55)), out.Total.String())

	require.Len(t, out.Events, 2)
	assert.Equal(t, "ev-1", out.Events[0].EventID)
	assert.Equal(t, "Rock Night", out.Events[0].EventName)
	assert.True(t, out.Events[0].Total.Equal(d(45)))
	assert.Equal(t, int64(2), out.Events[0].Purchases)
	assert.True(t, out.Events[1].Total.Equal(d(10)))
}

func TestPlatformEarningsByEvent(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	row, err := svc.PlatformEarningsByEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, row.ServiceFees.Equal(d(30)))
	assert.True(t, row.IssuanceFees.Equal(d(15)))

	empty, err := svc.PlatformEarningsByEvent(ctx, "ev-2")
	require.NoError(t, err)
	assert.Equal(t, "Jazz", empty.EventName)
	assert.True(t, empty.Total.IsZero())

	_, err = svc.PlatformEarningsByEvent(ctx, "nope")
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}

func TestOrganizerEarnings(t *testing.T) {
	svc, _ := seed(t)

	out, err := svc.OrganizerEarnings(context.Background(), "org")
	require.NoError(t, err)
	assert.Equal(t, "org", out.OrganizerLogin)
	assert.True(t, out.Revenue.Equal(d(300)), out.Revenue.String())
	assert.Equal(t, 53, out.TicketsSold)
	require.Len(t, out.Events, 2)

	rock := out.Events[0]
	assert.Equal(t, "ev-1", rock.EventID)
	assert.True(t, rock.Revenue.Equal(d(300)))
	assert.Equal(t, 53, rock.TicketsSold)
	require.Len(t, rock.Localities, 2)
	assert.Equal(t, "General", rock.Localities[0].Name)
	assert.True(t, rock.Localities[0].SoldPercent.Equal(d(25)))
	assert.True(t, rock.Localities[1].SoldPercent.Equal(d(30)))

	jazz := out.Events[1]
	assert.True(t, jazz.Revenue.IsZero())
	assert.Equal(t, 0, jazz.TicketsSold)
	assert.True(t, jazz.Localities[0].SoldPercent.IsZero())

	none, err := svc.OrganizerEarnings(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, none.Events)
	assert.True(t, none.Revenue.IsZero())
}

func TestSoldPercent(t *testing.T) {
	assert.True(t, soldPercent(1, 3).Equal(decimal.RequireFromString("33.33")))
	assert.True(t, soldPercent(3, 3).Equal(d(100)))
	assert.True(t, soldPercent(5, 0).IsZero())
}

func TestPlatformEarnings_ServedFromCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet(constants.CACHE_KEY_ANALYTICS_PLATFORM).
		SetVal(`{"purchases":9,"service_fees":"90","issuance_fees":"45","total":"135","events":[]}`)

	svc := NewService(NewSourceRepository(purchases.NewMemoryRepository(), fakeLocalities{}), fakeEvents{}, cache.NewService(db))
	out, err := svc.PlatformEarnings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.Purchases)
	assert.True(t, out.Total.Equal(d(135)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestController_Routes(t *testing.T) {
	svc, _ := seed(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) {
		c.Set("login", c.GetHeader("X-Test-Login"))
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	}
	SetupAnalyticsRoutes(r.Group("/api/v1"), NewController(svc), auth)

	cases := []struct {
		path, login, role string
		want              int
	}{
		{"/api/v1/admin/analytics/earnings", "admin", "ADMIN", http.StatusOK},
		{"/api/v1/admin/analytics/earnings", "org", "ORGANIZER", http.StatusForbidden},
		{"/api/v1/admin/analytics/earnings/events/ev-1", "admin", "ADMIN", http.StatusOK},
		{"/api/v1/admin/analytics/earnings/events/nope", "admin", "ADMIN", http.StatusNotFound},
		{"/api/v1/organizer/analytics/earnings", "org", "ORGANIZER", http.StatusOK},
		{"/api/v1/organizer/analytics/earnings", "ana", "BUYER", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("X-Test-Login", tc.login)
		req.Header.Set("X-Test-Role", tc.role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.path+" as "+tc.role)
	}
}
