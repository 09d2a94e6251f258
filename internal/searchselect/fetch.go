package searchselect

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// fetch issues a search for query under a fresh generation. The previous
// request's context is cancelled; its response would be dropped anyway.
func (m *Model[T]) fetch(query string) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	m.loading = true

	ctx, cancel := context.WithCancel(m.opts.Context)
	m.cancel = cancel

	id, gen, src := m.id, m.generation, m.opts.Source
	m.opts.Logger.Debug("searchselect.fetch", "picker", id, "generation", gen, "query", query)
	return func() tea.Msg {
		defer cancel()
		if src == nil {
			return resultMsg[T]{id: id, gen: gen, query: query, err: errNoSource}
		}
		res, err := src.Search(ctx, query)
		return resultMsg[T]{id: id, gen: gen, query: query, results: res, err: err}
	}
}

var errNoSource = errors.New("searchselect: no source configured")

// apply installs a current response. Failures fold into an empty result set.
func (m *Model[T]) apply(msg resultMsg[T]) tea.Cmd {
	m.loading = false
	m.cancel = nil
	if msg.err != nil {
		m.opts.Logger.Debug("searchselect.fetch.failed",
			"picker", m.id,
			"generation", msg.gen,
			"query", msg.query,
			"error", msg.err,
		)
		m.setResults(Results[T]{})
	} else {
		m.setResults(msg.results)
	}
	// A field blurred before its answer arrived holds the rows for the next
	// Focus but does not open.
	if !m.input.Focused() {
		return nil
	}
	if m.results.Len() > 0 || msg.query != "" {
		return m.setOpen(true)
	}
	return nil
}
