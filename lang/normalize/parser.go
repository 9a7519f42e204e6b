package normalize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/rosetto/lang"
)

// Parser normalizes author text before parsing it as canonical text.
type Parser struct {
	*Normalizer
}

// NewParser returns a [lang.Parser] that normalizes with the given options.
func NewParser(opts ...Option) *Parser {
	return &Parser{Normalizer: New(opts...)}
}

// ParseScript normalizes source and parses the result into a scenario.
func (p *Parser) ParseScript(
	ctx context.Context,
	name, source string,
) (*lang.Scenario, error) {
	lines, err := p.NormalizeString(ctx, source)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("script", name))
	}

	return lang.ParseScenario(ctx, name, strings.Join(lines, "\n"))
}

// ParseSource normalizes and parses source with the default rules.
func ParseSource(ctx context.Context, name, source string) (*lang.Scenario, error) {
	return NewParser().ParseScript(ctx, name, source)
}
