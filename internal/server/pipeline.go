package server

import (
	"context"

	"github.com/mohammad-safakhou/newsdesk/internal/analysis"
	"github.com/mohammad-safakhou/newsdesk/internal/assembler"
	"github.com/mohammad-safakhou/newsdesk/internal/broker"
	"github.com/mohammad-safakhou/newsdesk/internal/query"
	"github.com/mohammad-safakhou/newsdesk/internal/synth"
	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch"
)

// Pipeline groups the stateless components a request flows through.
type Pipeline struct {
	Analyzer  *query.Analyzer
	Broker    *broker.Broker
	Assembler *assembler.Assembler
	Synth     *synth.Synthesizer
	Analysis  *analysis.Orchestrator
	Fetcher   web_fetch.WebFetcher // optional
}

// retrieve runs analyzer, broker and assembler for a clean query.
func (p *Pipeline) retrieve(ctx context.Context, cleanQuery string, flags broker.Flags, purpose broker.Purpose) *models.ContextBundle {
	res := p.Broker.Fetch(ctx, broker.Request{
		CleanQuery: cleanQuery,
		Terms:      p.Analyzer.ExtractSearchTerms(cleanQuery),
		Flags:      flags,
		Purpose:    purpose,
	})
	return p.Assembler.Build(res, purpose)
}
