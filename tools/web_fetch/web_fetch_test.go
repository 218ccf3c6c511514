package web_fetch

import (
	"testing"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/chromedp"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/httpfetch"
	"github.com/stretchr/testify/require"
)

func TestNewWebFetcher(t *testing.T) {
	f, err := NewWebFetcher(config.FetchConfig{}, nil)
	require.NoError(t, err)
	hf, ok := f.(httpfetch.Fetch)
	require.True(t, ok)
	require.Equal(t, DefaultTimeout, hf.Timeout)
	require.Equal(t, MaxCharsDefault, hf.MaxChars)
	require.Equal(t, DefaultAgent, hf.UserAgent)

	f, err = NewWebFetcher(config.FetchConfig{Renderer: "Chromedp", MaxChars: 100}, nil)
	require.NoError(t, err)
	cf, ok := f.(chromedp.Fetch)
	require.True(t, ok)
	require.Equal(t, 100, cf.MaxChars)

	_, err = NewWebFetcher(config.FetchConfig{Renderer: "lynx"}, nil)
	require.Error(t, err)
}
