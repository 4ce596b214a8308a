package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordcards/internal/config"
	"github.com/example/wordcards/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.APIConfig{
		URL:            srv.URL + "/",
		Token:          "tok",
		Timeout:        2 * time.Second,
		RateLimitBurst: 1,
	})
}

func TestWordBook(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wordbook/IELTS core", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"word":"abandon","translations":[{"type":"v","translation":"покидать"}],"phrases":[]}]`)
	})

	entries, err := client.WordBook(context.Background(), "IELTS core")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abandon", entries[0].Word)
	assert.Nil(t, entries[0].ID)
}

func TestRequestErrorCarriesStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Word book not found"}`, http.StatusNotFound)
	})

	_, err := client.WordBook(context.Background(), "missing")
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
	assert.Contains(t, reqErr.Body, "Word book not found")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 0, StatusCode(assert.AnError))
}

func TestSearchEncodesQuery(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "look up & down", r.URL.Query().Get("q"))
		io.WriteString(w, `[{"id":12,"word":"look up","translations":[]}]`)
	})

	entries, err := client.Search(context.Background(), "look up & down")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	id, ok := entries[0].FavoriteID()
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
}

func TestFavoritesEndpoints(t *testing.T) {
	t.Parallel()

	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RequestURI())
		if r.Method == http.MethodGet {
			io.WriteString(w, `[{"id":5,"word":"Cat","translations":[],"added_at":"2024-03-01T09:00:00"}]`)
			return
		}
		io.WriteString(w, `{"status":"ok"}`)
	})
	ctx := context.Background()

	favs, err := client.Favorites(ctx, "")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, int64(5), favs[0].ID)
	require.NotNil(t, favs[0].AddedAt)

	_, err = client.Favorites(ctx, "ca")
	require.NoError(t, err)
	require.NoError(t, client.AddFavorite(ctx, 5))
	require.NoError(t, client.RemoveFavorite(ctx, 5))

	assert.Equal(t, []string{
		"GET /favorites",
		"GET /favorites?q=ca",
		"POST /favorites/5",
		"DELETE /favorites/5",
	}, calls)
}

func TestTranslateAndReview(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		switch r.URL.Path {
		case "/translate":
			assert.Equal(t, "serendipity", body["text"])
			assert.Equal(t, "ru", body["lang"])
			io.WriteString(w, `{"result":"  счастливая случайность \n"}`)
		case "/review/9":
			assert.Equal(t, float64(3), body["quality"])
			io.WriteString(w, `{"status":"ok"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	result, err := client.Translate(ctx, "serendipity", "ru")
	require.NoError(t, err)
	assert.Equal(t, "счастливая случайность", result)

	require.NoError(t, client.Review(ctx, 9, models.Fuzzy))
}

func TestOverviewAndExport(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats/overview":
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			io.WriteString(w, `{"reviewed":42,"due":3,"next_due":"2024-03-02T08:00:00"}`)
		case "/stats/export":
			w.Header().Set("Content-Type", "text/csv")
			io.WriteString(w, "word_id,quality\n1,5\n")
		}
	})
	ctx := context.Background()

	overview, err := client.Overview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 42, overview.Reviewed)
	assert.Equal(t, 3, overview.Due)
	require.NotNil(t, overview.NextDue)

	csv, err := client.ExportStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "word_id,quality\n1,5\n", csv)
}

func TestRequestHonoursContext(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.WordBooks(ctx)
	assert.Error(t, err)
	assert.True(t, client.Authenticated())
}
