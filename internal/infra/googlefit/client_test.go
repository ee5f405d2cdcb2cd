package googlefit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "urn:test"}, srv.Client())
	c.now = func() time.Time { return now }
	c.TokenEndpoint = srv.URL + "/token"
	c.FitnessEndpoint = srv.URL + "/aggregate"
	return c
}

func TestAuthURLCarriesState(t *testing.T) {
	c := NewClient(Config{ClientID: "id", RedirectURL: "urn:test"}, nil)
	u, err := url.Parse(c.AuthURL("42"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "42", q.Get("state"))
	assert.Equal(t, "id", q.Get("client_id"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, activityScope, q.Get("scope"))
}

func TestExchangeCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600}`))
	})

	tok, err := c.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.Equal(t, now.Add(time.Hour), tok.Expiry)
}

func TestRefreshRejectedGrant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})

	_, err := c.RefreshToken(context.Background(), "old")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetDailyActivitySumsPoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		var req aggregateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC).UnixMilli(), req.StartMillis)
		assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC).UnixMilli(), req.EndMillis)
		w.Write([]byte(`{"bucket":[{"dataset":[
			{"point":[{"dataTypeName":"com.google.step_count.delta","value":[{"intVal":3000}]},
			          {"dataTypeName":"com.google.step_count.delta","value":[{"intVal":1500}]}]},
			{"point":[{"dataTypeName":"com.google.calories.expended","value":[{"fpVal":212.7}]}]}
		]}]}`))
	})

	daily, err := c.GetDailyActivity(context.Background(), "at", now)
	require.NoError(t, err)
	assert.Equal(t, 4500, daily.Steps)
	assert.Equal(t, 212, daily.Calories)
}

func TestGetDailyActivityUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.GetDailyActivity(context.Background(), "expired", now)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
