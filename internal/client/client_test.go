package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hospital-roster/internal/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_HospitalsNormalizesAndSendsToken(t *testing.T) {
	var gotAuth, gotQuery string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"hospitals": []any{
					map[string]any{"id": "h1", "name": "Mercy", "adminName": "Dr. X", "adminEmail": "x@mercy.org"},
					map[string]any{"id": "h2", "name": "Bare"},
					"garbage",
				},
				"count": 2,
			},
		})
	})

	c := New(srv.URL, StaticToken("tok-123"))
	results, err := c.Hospitals(context.Background(), roster.Criteria{Region: "northeast", Capacity: &roster.CapacityRange{Min: 100}})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "minBeds=100&region=northeast", gotQuery)

	require.Len(t, results, 2)
	assert.Equal(t, "Dr. X", results[0].Hospital.AdminName())
	assert.Equal(t, roster.StatusActive, results[1].Hospital.Status)
	assert.NotNil(t, results[1].Hospital.AdditionalAdmins)
}

func TestClient_ErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   any
		want   string
		reauth bool
	}{
		{"message from body", http.StatusConflict, map[string]any{"success": false, "error": "duplicate email"}, "duplicate email", false},
		{"generic 401", http.StatusUnauthorized, nil, genericMessage(http.StatusUnauthorized), true},
		{"generic 404", http.StatusNotFound, nil, "The requested hospital was not found.", false},
		{"generic 500", http.StatusInternalServerError, nil, genericMessage(http.StatusInternalServerError), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.body == nil {
					w.WriteHeader(tc.status)
					_, _ = io.WriteString(w, "oops")
					return
				}
				writeJSON(w, tc.status, tc.body)
			})

			err := New(srv.URL, StaticToken("t")).DeleteHospital(context.Background(), "h1")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Equal(t, tc.reauth, apiErr.NeedsReauth())
			assert.False(t, IsTransport(err))
		})
	}
}

func TestClient_NoSession(t *testing.T) {
	err := New("http://127.0.0.1:1", StaticToken("  ")).DeleteHospital(context.Background(), "h1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.NeedsReauth())
}

func TestClient_TimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := New(srv.URL, nil, WithTimeout(20*time.Millisecond)).Stats(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestClient_UpdateHospitalBody(t *testing.T) {
	var body map[string]any
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/hospitals/h1", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"addedAdmins": []any{
					map[string]any{"tempId": 1, "email": "a@b.com", "id": "n1"},
					map[string]any{"tempId": 2, "email": "c@d.com", "error": "Email is already used by another admin"},
				},
				"addedAdminsCount": map[string]any{"total": 2, "successful": 1, "failed": 1},
			},
		})
	})

	payload := &roster.ReconciliationPayload{AdditionalAdmins: []roster.DraftAdmin{}, AdminsToRemove: []string{"admin_1"}}
	res, err := New(srv.URL, nil).UpdateHospital(context.Background(), "h1", map[string]any{"city": "Boston"}, payload)
	require.NoError(t, err)

	assert.Equal(t, "Boston", body["city"])
	assert.Equal(t, []any{"admin_1"}, body["adminsToRemove"])
	assert.Contains(t, body, "primaryAdminUpdate")
	assert.Nil(t, body["primaryAdminUpdate"])

	assert.Equal(t, AddedAdminsCount{Total: 2, Successful: 1, Failed: 1}, res.AddedAdminsCount)
	require.Len(t, res.FailedAdmins(), 1)
	assert.Equal(t, int64(2), res.FailedAdmins()[0].TempID)
}

func TestClient_HospitalAdmins(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{"admins": []any{
				map[string]any{"_id": "a1", "name": "Ann Park", "isPrimary": true},
				map[string]any{"id": "a2", "firstName": "Bo", "lastName": "Chen"},
			}},
		})
	})

	admins, err := New(srv.URL, nil).HospitalAdmins(context.Background(), "h1")
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "a1", admins[0].ID)
	assert.True(t, admins[0].IsPrimary)
	assert.Equal(t, "Bo Chen", admins[1].Name)
}

func TestRetry(t *testing.T) {
	var calls atomic.Int32
	_, err := retry(context.Background(), retryAttempts, time.Millisecond, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, ErrTransport
	})
	assert.True(t, IsTransport(err))
	assert.EqualValues(t, 2, calls.Load())

	calls.Store(0)
	_, err = retry(context.Background(), retryAttempts, time.Millisecond, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, &APIError{StatusCode: http.StatusNotFound}
	})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load(), "server errors are not retried")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = retry(ctx, retryAttempts, time.Hour, func(context.Context) (int, error) {
		return 0, ErrTransport
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
