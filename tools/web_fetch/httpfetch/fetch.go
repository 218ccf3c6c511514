// Package httpfetch retrieves pages with a plain HTTP GET.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/article"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
)

const maxBodyBytes = 4 << 20

type Fetch struct {
	Client    *http.Client
	Timeout   time.Duration
	MaxChars  int
	UserAgent string
}

func (f Fetch) Exec(ctx context.Context, link string) (models.Result, error) {
	page, err := article.ParseURL(link)
	if err != nil {
		return models.Result{}, err
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	t0 := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return models.Result{}, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.Result{URL: link}, fmt.Errorf("fetch %s: %w", link, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Result{URL: link, Status: resp.StatusCode}, &models.StatusError{URL: link, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Result{URL: link, Status: resp.StatusCode}, fmt.Errorf("read %s: %w", link, err)
	}

	res, err := article.Parse(string(body), page, f.MaxChars)
	res.Status = resp.StatusCode
	res.RenderMS = int(time.Since(t0) / time.Millisecond)
	return res, err
}
