package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	wsmodels "github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/stretchr/testify/require"
)

func TestSearchNewsMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/news", r.URL.Path)
		require.Equal(t, "key", r.Header.Get("X-API-KEY"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "de", body["hl"])
		require.Equal(t, "de", body["gl"])
		_, _ = w.Write([]byte(`{"news":[
			{"title":"A","link":"https://a.example/1","snippet":"alpha","date":"3 hours ago","source":"Alpha"},
			{"title":"no link"},
			{"title":"B","link":"https://b.example/2","snippet":"beta"}
		]}`))
	}))
	defer srv.Close()

	out, err := Search{APIKey: "key", BaseURL: srv.URL}.Search(context.Background(), wsmodels.Query{Text: "wahl", Mode: wsmodels.ModeNews, Locale: "de-DE", Count: 5})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "Alpha", out[0].Source)
	require.NotNil(t, out[0].PublishedAt)
	require.Nil(t, out[1].PublishedAt)
}

func TestSearchComprehensiveUsesOrganic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		_, _ = w.Write([]byte(`{"organic":[{"title":"A","link":"https://a.example/1"},{"title":"B","link":"https://b.example/2"}]}`))
	}))
	defer srv.Close()

	out, err := Search{APIKey: "key", BaseURL: srv.URL}.Search(context.Background(), wsmodels.Query{Text: "x", Mode: wsmodels.ModeComprehensive, Count: 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
}
