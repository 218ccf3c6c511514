package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/mohammad-safakhou/newsdesk/news/newsapi"
	wsmodels "github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeb struct {
	calls   int32
	results []models.SearchResult
	err     error
	block   bool
	lastQ   wsmodels.Query
	mu      sync.Mutex
}

func (f *fakeWeb) Search(ctx context.Context, q wsmodels.Query) ([]models.SearchResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.lastQ = q
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.results, f.err
}

type fakeNews struct {
	everythingCalls int32
	headlineCalls   int32
	news            []models.SearchResult
	newsErr         error
	headlines       []models.SearchResult
	headlinesErr    error
	lastQuery       newsapi.EverythingQuery
	lastRegion      string
}

func (f *fakeNews) Everything(_ context.Context, q newsapi.EverythingQuery) ([]models.SearchResult, error) {
	atomic.AddInt32(&f.everythingCalls, 1)
	f.lastQuery = q
	return f.news, f.newsErr
}

func (f *fakeNews) TopHeadlines(_ context.Context, region string, count int) ([]models.SearchResult, error) {
	atomic.AddInt32(&f.headlineCalls, 1)
	f.lastRegion = region
	if count < len(f.headlines) {
		return f.headlines[:count], f.headlinesErr
	}
	return f.headlines, f.headlinesErr
}

func results(prefix string, n int) []models.SearchResult {
	out := make([]models.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.SearchResult{Title: fmt.Sprintf("%s %d", prefix, i), Link: fmt.Sprintf("https://%s.example/%d", prefix, i)})
	}
	return out
}

func assertNoDuplicateLinks(t *testing.T, urls []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, u := range urls {
		require.False(t, seen[u], "duplicate link %s", u)
		seen[u] = true
	}
}

func TestWebUsableSkipsOtherTiers(t *testing.T) {
	web := &fakeWeb{results: results("web", 3)}
	news := &fakeNews{news: results("news", 2), headlines: results("top", 2)}
	b := New(Backends{Web: web, News: news, Headlines: news})

	res := b.Fetch(context.Background(), Request{CleanQuery: "latest AI developments", Terms: []string{"ai"}, Flags: Flags{WebSearchEnabled: true}})

	assert.True(t, res.Usable(models.TierWebSearch))
	assert.Len(t, res.SourceURLs, 3)
	assert.Zero(t, atomic.LoadInt32(&news.everythingCalls))
	assert.Zero(t, atomic.LoadInt32(&news.headlineCalls))
	assert.Equal(t, wsmodels.ModeNews, web.lastQ.Mode)
	assert.Equal(t, chatWebCount, web.lastQ.Count)
}

func TestSearchModeUsesComprehensiveAndExploreCount(t *testing.T) {
	web := &fakeWeb{results: results("web", 1)}
	b := New(Backends{Web: web})
	b.Fetch(context.Background(), Request{CleanQuery: "q", Flags: Flags{WebSearchEnabled: true, SearchMode: true}, Purpose: PurposeExplore})
	assert.Equal(t, wsmodels.ModeComprehensive, web.lastQ.Mode)
	assert.Equal(t, exploreWebCount, web.lastQ.Count)
}

func TestEmptyWebFallsBackToTargetedNews(t *testing.T) {
	web := &fakeWeb{}
	news := &fakeNews{news: results("news", 2), headlines: results("top", 2)}
	b := New(Backends{Web: web, News: news, Headlines: news})

	res := b.Fetch(context.Background(), Request{CleanQuery: "q", Terms: []string{"tesla", "Elon Musk"}, Flags: Flags{WebSearchEnabled: true, Locale: "de-AT"}})

	assert.True(t, res.Usable(models.TierTargetedNews))
	assert.False(t, res.Usable(models.TierHeadlines))
	assert.Zero(t, atomic.LoadInt32(&news.headlineCalls))
	assert.Equal(t, "publishedAt", news.lastQuery.SortBy)
	assert.Equal(t, targetedNewsCount, news.lastQuery.PageSize)
	assert.Equal(t, "de", news.lastQuery.Language)
	assert.Equal(t, []string{"tesla", "Elon Musk"}, news.lastQuery.Terms)
}

func TestAllEmptyFallsBackToHeadlines(t *testing.T) {
	news := &fakeNews{headlines: results("top", 12)}
	b := New(Backends{News: news, Headlines: news})

	res := b.Fetch(context.Background(), Request{CleanQuery: "q", Flags: Flags{Locale: "en-GB"}})

	assert.True(t, res.Usable(models.TierHeadlines))
	assert.Len(t, res.SourceURLs, headlineCount)
	assert.Equal(t, "gb", news.lastRegion)
}

func TestSearchModeMergesHeadlinesWithTargetedNews(t *testing.T) {
	web := &fakeWeb{err: errors.New("boom")}
	news := &fakeNews{
		news:      results("news", 2),
		headlines: append(results("top", 2), models.SearchResult{Title: "dup", Link: "https://NEWS.example/0?utm_source=x"}),
	}
	b := New(Backends{Web: web, News: news, Headlines: news})

	res := b.Fetch(context.Background(), Request{CleanQuery: "q", Terms: []string{"x"}, Flags: Flags{WebSearchEnabled: true, SearchMode: true}})

	assert.True(t, res.Usable(models.TierTargetedNews))
	assert.True(t, res.Usable(models.TierHeadlines))
	assert.Len(t, res.SourceURLs, 4)
	assertNoDuplicateLinks(t, res.SourceURLs)
	top, _ := res.Tier(models.TierHeadlines)
	assert.Len(t, top.Results, 2)
}

func TestBackendErrorsAreAbsorbed(t *testing.T) {
	web := &fakeWeb{err: errors.New("503")}
	news := &fakeNews{newsErr: errors.New("quota"), headlinesErr: errors.New("down")}
	b := New(Backends{Web: web, News: news, Headlines: news})

	res := b.Fetch(context.Background(), Request{CleanQuery: "q", Flags: Flags{WebSearchEnabled: true}})

	assert.Empty(t, res.SourceURLs)
	require.Len(t, res.Tiers, 3)
	for _, tr := range res.Tiers {
		assert.Error(t, tr.Err)
		assert.False(t, tr.Usable())
	}
}

func TestMissingBackendsCountAsEmpty(t *testing.T) {
	b := New(Backends{})
	res := b.Fetch(context.Background(), Request{CleanQuery: "q", Flags: Flags{WebSearchEnabled: true}})
	assert.Empty(t, res.SourceURLs)
	assert.Len(t, res.Tiers, 3)
}

func TestTierTimeoutDegradesToFallback(t *testing.T) {
	web := &fakeWeb{block: true}
	news := &fakeNews{news: results("news", 1)}
	b := New(Backends{Web: web, News: news, Headlines: news}, WithTierTimeout(20*time.Millisecond))

	start := time.Now()
	res := b.Fetch(context.Background(), Request{CleanQuery: "q", Terms: []string{"t"}, Flags: Flags{WebSearchEnabled: true}})

	assert.Less(t, time.Since(start), time.Second)
	web2, _ := res.Tier(models.TierWebSearch)
	assert.ErrorIs(t, web2.Err, context.DeadlineExceeded)
	assert.True(t, res.Usable(models.TierTargetedNews))
}

func TestDuplicateLinksWithinTierCollapse(t *testing.T) {
	dup := []models.SearchResult{
		{Title: "a", Link: "https://a.example/x"},
		{Title: "a again", Link: "https://a.example/x#frag"},
		{Title: "b", Link: "https://b.example/y"},
	}
	b := New(Backends{Web: &fakeWeb{results: dup}})
	res := b.Fetch(context.Background(), Request{CleanQuery: "q", Flags: Flags{WebSearchEnabled: true}})
	assert.Equal(t, []string{"https://a.example/x", "https://b.example/y"}, res.SourceURLs)
}
