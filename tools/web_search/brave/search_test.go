package brave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	wsmodels "github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/stretchr/testify/require"
)

func TestSearchNewsModeUsesNewsEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/news/search", r.URL.Path)
		require.Equal(t, "tok", r.Header.Get("X-Subscription-Token"))
		require.Equal(t, "gb", r.URL.Query().Get("country"))
		require.Equal(t, "2", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`{"results":[
			{"title":"A","url":"https://a.example/1","description":"<b>alpha</b>","page_age":"2024-05-01T10:00:00","meta_url":{"hostname":"a.example"}},
			{"title":"B","url":"https://b.example/2","description":"beta","profile":{"name":"B News"}},
			{"title":"C","url":"https://c.example/3","description":"gamma"}
		]}`))
	}))
	defer srv.Close()

	s := Search{APIKey: "tok", BaseURL: srv.URL}
	out, err := s.Search(context.Background(), wsmodels.Query{Text: "ai", Mode: wsmodels.ModeNews, Locale: "en-GB", Count: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "a.example", out[0].Source)
	require.NotNil(t, out[0].PublishedAt)
	require.Equal(t, "B News", out[1].Source)
}

func TestSearchComprehensiveReadsWebResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/web/search", r.URL.Path)
		_, _ = w.Write([]byte(`{"web":{"results":[{"title":"A","url":"https://a.example/1","description":"x"}]}}`))
	}))
	defer srv.Close()

	out, err := Search{APIKey: "tok", BaseURL: srv.URL}.Search(context.Background(), wsmodels.Query{Text: "ai", Mode: wsmodels.ModeComprehensive, Count: 8})
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := Search{APIKey: "tok", BaseURL: srv.URL}.Search(context.Background(), wsmodels.Query{Text: "ai", Count: 8})
	var se *wsmodels.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestSearchWithoutKey(t *testing.T) {
	_, err := Search{}.Search(context.Background(), wsmodels.Query{Text: "ai"})
	require.ErrorIs(t, err, wsmodels.ErrMissingCredentials)
}
