package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html><html><head><title>Council approves budget</title></head><body>
<nav><a href="/">Home</a> <a href="/news">News</a></nav>
<article>
<h1>Council approves budget</h1>
<p>The city council approved the annual budget on Tuesday after a long debate about road repairs,
school funding and the future of the public library system, which had faced deep cuts last year.</p>
<p>Council members said the final plan keeps property taxes flat while moving money from reserve
funds into maintenance projects that residents have been requesting for nearly a decade now.</p>
<p>The mayor is expected to sign the budget later this week, according to a statement released by
the mayor's office shortly after the vote concluded late on Tuesday evening in the chamber.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func TestExecExtractsArticle(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	f := Fetch{Client: srv.Client(), Timeout: 5 * time.Second, MaxChars: 20000, UserAgent: "newsdesk-test"}
	res, err := f.Exec(context.Background(), srv.URL+"/budget")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, "newsdesk-test", agent)
	require.Contains(t, res.Text, "approved the annual budget")
	require.NotContains(t, res.Text, "<p>")
}

func TestExecTruncatesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	res, err := Fetch{Client: srv.Client(), MaxChars: 40}.Exec(context.Background(), srv.URL)
	require.NoError(t, err)
	require.LessOrEqual(t, len([]rune(res.Text)), 40)
}

func TestExecReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res, err := Fetch{Client: srv.Client()}.Exec(context.Background(), srv.URL)
	var se *models.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusNotFound, se.Code)
	require.Equal(t, http.StatusNotFound, res.Status)
}

func TestExecRejectsBadURL(t *testing.T) {
	for _, link := range []string{"", "ftp://example.com/file", "not a url"} {
		_, err := Fetch{}.Exec(context.Background(), link)
		require.ErrorIs(t, err, models.ErrInvalidURL, link)
	}
}
