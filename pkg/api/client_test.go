package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statpull/statpull/pkg/errors"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "year=2022&team=Alabama", r.URL.RawQuery)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "home_team": "Alabama", "score": {"home": 24, "away": 17}},
			{"id": 2, "home_team": "Auburn", "score": {"home": 13, "away": 20}}
		]`))
	}))
	defer server.Close()

	query, err := NewQuery("games", []string{"year", "team"}, []string{"2022", "Alabama"})
	require.NoError(t, err)

	result, err := newTestClient(server.URL).Fetch(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, 2, result.NumRows())
	assert.Equal(t, []string{"ID", "HOME_TEAM", "SCORE.HOME", "SCORE.AWAY"}, result.Columns)
	assert.Equal(t, "Alabama", result.CellString(0, "HOME_TEAM"))
	assert.Equal(t, "24", result.CellString(0, "SCORE.HOME"))
	assert.Equal(t, "20", result.CellString(1, "SCORE.AWAY"))
}

func TestFetchNon200ReturnsAPIRequestError(t *testing.T) {
	statuses := []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusInternalServerError}

	for _, status := range statuses {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		query, err := NewQuery("games", nil, nil)
		require.NoError(t, err)

		result, err := newTestClient(server.URL).Fetch(context.Background(), query)
		server.Close()

		require.Error(t, err)
		assert.Nil(t, result, "no partial table on non-200")
		assert.True(t, errors.IsType(err, errors.TypeAPIRequest))

		var structured *errors.Error
		require.ErrorAs(t, err, &structured)
		assert.Equal(t, status, structured.Details["status_code"])
	}
}

func TestFetchTransportError(t *testing.T) {
	// Closed server: connection refused before any HTTP status.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	query, err := NewQuery("games", nil, nil)
	require.NoError(t, err)

	_, err = newTestClient(server.URL).Fetch(context.Background(), query)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeTransport))
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 20 * time.Millisecond,
	})

	query, err := NewQuery("games", nil, nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), query)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeTransport))
}

func TestFetchValidationBeforeNetwork(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	// Mismatched filter lists are rejected while building the query,
	// before any request can be issued.
	_, err := NewQuery("games", []string{"year"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeValidation))

	// An empty category is rejected by the client before dialing.
	_, err = newTestClient(server.URL).Fetch(context.Background(), Query{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeValidation))

	assert.Equal(t, int64(0), requests.Load())
}

func TestFetchSingleObjectResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"team": "Alabama", "wins": 11}`))
	}))
	defer server.Close()

	query, err := NewQuery("records", nil, nil)
	require.NoError(t, err)

	result, err := newTestClient(server.URL).Fetch(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NumRows())
	assert.Equal(t, []string{"TEAM", "WINS"}, result.Columns)
}
