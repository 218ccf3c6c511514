package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	require.Equal(t, `"openai" OR "Federal Reserve"`, BuildQuery([]string{"openai", " ", `"Federal Reserve"`}))
	require.Equal(t, "", BuildQuery(nil))
}

func TestEverythingParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/everything", r.URL.Path)
		require.Equal(t, "k", r.Header.Get("X-Api-Key"))
		q := r.URL.Query()
		require.Equal(t, `"tesla" OR "Elon Musk"`, q.Get("q"))
		require.Equal(t, "publishedAt", q.Get("sortBy"))
		require.Equal(t, "8", q.Get("pageSize"))
		require.Equal(t, "en", q.Get("language"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Reuters"},"title":"T1","description":"d1","url":"https://r.example/1","publishedAt":"2024-05-01T10:00:00Z"},
			{"source":{"name":"x"},"title":"[Removed]","url":"https://removed.example"},
			{"source":{"name":"AP"},"title":"T2","url":""}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, nil)
	out, err := c.Everything(context.Background(), EverythingQuery{
		Terms: []string{"tesla", "Elon Musk"}, Language: "en", SortBy: "publishedAt", PageSize: 8,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Reuters", out[0].Source)
	require.NotNil(t, out[0].PublishedAt)
}

func TestEverythingFallsBackToRawQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "what is going on", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	out, err := NewClient("k", srv.URL, nil).Everything(context.Background(), EverythingQuery{Fallback: "what is going on"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestTopHeadlinesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/top-headlines", r.URL.Path)
		require.Equal(t, "gb", r.URL.Query().Get("country"))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"slow down"}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", srv.URL, nil).TopHeadlines(context.Background(), "GB", 10)
	require.ErrorContains(t, err, "rateLimited")
}

func TestMissingKey(t *testing.T) {
	_, err := NewClient("", "", nil).TopHeadlines(context.Background(), "us", 10)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
