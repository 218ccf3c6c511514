package helpers

import "testing"

func TestCanonicalURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "defaults https and cleans path",
			in:   "Example.com/news/../tech/latest",
			want: "https://example.com/tech/latest",
		},
		{
			name: "removes default port and tracking params",
			in:   "http://news.example.com:80/article?id=123&utm_source=rss#section",
			want: "http://news.example.com/article?id=123",
		},
		{
			name: "sorts query parameters and preserves trailing slash",
			in:   "https://example.com/path/?b=2&a=1&fbclid=xyz",
			want: "https://example.com/path/?a=1&b=2",
		},
		{
			name: "handles schemeless url with double slash",
			in:   "//blog.example.com/post/42?utm_medium=email",
			want: "https://blog.example.com/post/42",
		},
		{
			name: "normalises repeated slashes",
			in:   "https://example.com//a//b///c",
			want: "https://example.com/a/b/c",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("CanonicalURL() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalURL() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	t.Parallel()
	if _, err := CanonicalURL(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := CanonicalURL(":///invalid"); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}

func TestLinkKeyCollapsesVariants(t *testing.T) {
	t.Parallel()
	variants := []string{
		"https://Example.com/Article?a=1&utm_campaign=foo",
		"HTTPS://example.com:443/Article?a=1#top",
		"  https://example.com/Article?a=1  ",
	}
	want := LinkKey(variants[0])
	for _, v := range variants[1:] {
		if got := LinkKey(v); got != want {
			t.Fatalf("LinkKey(%q) = %q, want %q", v, got, want)
		}
	}
	if got := LinkKey(":///bad"); got != ":///bad" {
		t.Fatalf("expected raw fallback, got %q", got)
	}
}

func TestDomain(t *testing.T) {
	t.Parallel()
	if got := Domain("https://www.Reuters.com/world/x"); got != "reuters.com" {
		t.Fatalf("Domain() = %q", got)
	}
	if got := Domain("not a url"); got != "" {
		t.Fatalf("expected empty domain, got %q", got)
	}
}
