package lang

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zeebo/xxh3"
)

// scriptCache stores parsed macro bodies keyed by the xxh3 hash of their
// source, so a macro invoked many times is parsed once.
type scriptCache struct {
	entries sync.Map
}

// state tracks the parse of one source.
type state struct {
	sc     *Scenario
	err    error
	source string
	once   sync.Once
}

func newScriptCache() *scriptCache { return &scriptCache{} }

func (c *scriptCache) parse(ctx context.Context, p Parser, s *Script) (*Scenario, error) {
	if p == nil {
		return nil, ErrNoParser.With(slog.String("macro", s.Name))
	}

	value, _ := c.entries.LoadOrStore(xxh3.HashString(s.Source), &state{source: s.Source})

	entry, ok := value.(*state)
	if !ok {
		return nil, ErrNoParser.With(slog.String("issue", "invalid cache entry"))
	}

	// Hash collision: parse without caching.
	if entry.source != s.Source {
		return p.ParseScript(ctx, s.Name, s.Source)
	}

	entry.once.Do(func() {
		entry.sc, entry.err = p.ParseScript(ctx, s.Name, s.Source)
	})

	return entry.sc, entry.err
}

// Len returns the number of cached sources.
func (c *scriptCache) Len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}
