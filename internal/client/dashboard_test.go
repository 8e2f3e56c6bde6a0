package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"hospital-roster/internal/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRoster serves the roster endpoints from memory
type fakeRoster struct {
	mu        sync.Mutex
	hospitals []map[string]any
	admins    []map[string]any
	updates   []map[string]any
	down      atomic.Bool
}

func (f *fakeRoster) handler(w http.ResponseWriter, r *http.Request) {
	if f.down.Load() {
		hj, ok := w.(http.Hijacker)
		if ok {
			conn, _, _ := hj.Hijack()
			_ = conn.Close()
		}
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/hospitals":
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"hospitals": f.hospitals}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/hospitals/stats":
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"total": len(f.hospitals)}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/hospitals/h1/admins":
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"admins": f.admins}})
	case r.Method == http.MethodPut && r.URL.Path == "/api/hospitals/h1":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.updates = append(f.updates, body)
		f.hospitals = append(f.hospitals, map[string]any{"id": "h2", "name": "Added Later"})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"addedAdmins":      []any{map[string]any{"tempId": 7, "id": "n1", "email": "cy@mercy.org"}},
			"addedAdminsCount": map[string]any{"total": 1, "successful": 1, "failed": 0},
		}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
	}
}

func newFakeRoster(t *testing.T) (*fakeRoster, *Dashboard) {
	t.Helper()
	f := &fakeRoster{
		hospitals: []map[string]any{{"id": "h1", "name": "Mercy", "state": "ny", "adminName": "Ann Park"}},
		admins: []map[string]any{
			{"id": "admin_0", "firstName": "Ann", "lastName": "Park", "email": "ann@mercy.org", "isPrimary": true},
			{"id": "admin_1", "firstName": "Bo", "lastName": "Chen", "email": "bo@mercy.org"},
		},
	}
	srv := newServer(t, f.handler)
	d := NewDashboard(New(srv.URL, StaticToken("t")),
		WithFallback(roster.Normalize([]map[string]any{{"id": "demo", "name": "Demo Hospital"}})))
	d.delay = 0
	return f, d
}

func TestDashboard_Refresh(t *testing.T) {
	_, d := newFakeRoster(t)

	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, 1, d.Store().Len())
	assert.Equal(t, 1, d.Stats().Total)
	assert.Empty(t, d.Banner())

	got := d.View(roster.Criteria{Region: "northeast", AdminFilter: roster.AdminFilterHas})
	require.Len(t, got, 1)
	assert.Equal(t, "h1", got[0].ID)
}

func TestDashboard_FallbackWhenOffline(t *testing.T) {
	f, d := newFakeRoster(t)
	f.down.Store(true)

	err := d.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, offlineBanner, d.Banner())

	snapshot := d.Store().Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "demo", snapshot[0].ID)

	d.DismissBanner()
	assert.Empty(t, d.Banner())

	// last known data survives a later outage
	f.down.Store(false)
	require.NoError(t, d.Refresh(context.Background()))
	f.down.Store(true)
	require.Error(t, d.Refresh(context.Background()))
	_, ok := d.Store().Get("h1")
	assert.True(t, ok)
}

func TestDashboard_SaveAdmins(t *testing.T) {
	f, d := newFakeRoster(t)
	require.NoError(t, d.Refresh(context.Background()))

	res, err := d.SaveAdmins(context.Background(), "h1",
		[]roster.DraftAdmin{{ID: 7, FirstName: "Cy", LastName: "Diaz", Email: "cy@mercy.org"}},
		[]string{"admin_1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, AddedAdminsCount{Total: 1, Successful: 1}, res.AddedAdminsCount)

	require.Len(t, f.updates, 1)
	assert.Equal(t, []any{"admin_1"}, f.updates[0]["adminsToRemove"])
	assert.Nil(t, f.updates[0]["primaryAdminUpdate"])

	assert.Equal(t, 2, d.Store().Len(), "roster is re-fetched after a save")
}

func TestDashboard_SaveAdminsValidationSendsNothing(t *testing.T) {
	f, d := newFakeRoster(t)

	_, err := d.SaveAdmins(context.Background(), "h1",
		[]roster.DraftAdmin{{FirstName: "Dup", LastName: "Ann", Email: "ANN@mercy.org"}}, nil, nil)
	var verrs roster.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "admin_0_email")
	assert.Empty(t, f.updates)

	res, err := d.SaveAdmins(context.Background(), "h1", nil, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, res.AddedAdminsCount.Total)
	assert.Empty(t, f.updates)
}

func TestDashboard_CloseIgnoresLateResults(t *testing.T) {
	_, d := newFakeRoster(t)
	d.Close()

	require.NoError(t, d.Refresh(context.Background()))
	assert.Zero(t, d.Store().Len())
	assert.Zero(t, d.Stats().Total)
}
