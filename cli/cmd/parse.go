package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/lang/normalize"
	"github.com/ardnew/rosetto/log"
)

// defaultIndent is the number of spaces used to indent JSON and YAML output.
const defaultIndent = 2

// Parse prints the scenario parsed from one or more script files.
type Parse struct {
	Files     []string `arg:"" help:"Script file(s) or '-' for stdin" name:"file"`
	Format    string   `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"o"`
	AutoBreak bool     `default:"true" help:"End prose lines with a line break." negatable:""`
}

// scenarioDoc is the JSON and YAML form of a scenario.
type scenarioDoc struct {
	Name   string         `json:"name"             yaml:"name"`
	Labels map[string]int `json:"labels,omitempty" yaml:"labels,omitempty"`
	Units  []unitDoc      `json:"units"            yaml:"units"`
}

type unitDoc struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Text  string `json:"text,omitempty"  yaml:"text,omitempty"`
	Call  string `json:"call,omitempty"  yaml:"call,omitempty"`
}

func makeScenarioDoc(sc *lang.Scenario) scenarioDoc {
	doc := scenarioDoc{
		Name:   sc.Name,
		Labels: make(map[string]int),
		Units:  make([]unitDoc, len(sc.Units)),
	}

	for name, at := range sc.Labels() {
		doc.Labels[name] = at
	}

	for i, u := range sc.Units {
		doc.Units[i] = unitDoc{Label: sc.LabelAt(i), Text: u.Text}
		if u.Call != nil {
			doc.Units[i].Call = u.Call.String()
		}
	}

	return doc
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context, io Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := ResolveSource(ctx, p.Files)
	if err != nil {
		return err
	}

	text, err := src.Read(io.In)
	if err != nil {
		return err
	}

	sc, err := normalize.NewParser(
		normalize.WithAutoBreak(p.AutoBreak),
		normalize.WithLogger(log.Default().Named("parse")),
	).ParseScript(ctx, src.Name(), text)
	if err != nil {
		return err
	}

	var out []byte

	switch p.Format {
	case "json":
		out, err = json.MarshalIndent(makeScenarioDoc(sc), "", fmt.Sprintf("%*s", defaultIndent, ""))
		if err != nil {
			return ErrJSONMarshal.With(slog.String("script", sc.Name)).Wrap(err)
		}

		out = append(out, '\n')

	case "yaml":
		out, err = yaml.MarshalWithOptions(makeScenarioDoc(sc), yaml.Indent(defaultIndent))
		if err != nil {
			return ErrYAMLMarshal.With(slog.String("script", sc.Name)).Wrap(err)
		}

	default:
		for _, u := range sc.Units {
			out = fmt.Appendln(out, u.String())
		}
	}

	_, err = io.Out.Write(out)

	return err
}
