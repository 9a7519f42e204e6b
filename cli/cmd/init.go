package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/rosetto/log"
	"github.com/ardnew/rosetto/profile"
)

// Init writes a configuration file holding the current global flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context, io Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrNoConfigPath
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrNoConfigPath
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	values := i.values(ctx)

	buf, err := yaml.MarshalWithOptions(values, yaml.Indent(defaultIndent))
	if err != nil {
		return ErrYAMLMarshal.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, buf, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.Int("flags", len(values)),
	)

	_, err = io.Out.Write([]byte(confPath + "\n"))

	return err
}

// values returns the global flags with a value worth saving, in the
// order kong declares them.
func (i *Init) values(ctx context.Context) yaml.MapSlice {
	ktx := kongContextFrom(ctx)

	ignore := []string{"help", "version", profile.Tag}

	var values yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val, ok := plain(ktx.FlagValue(flag)); ok {
			values = append(values, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return values
}

// plain converts a flag value to a YAML scalar or sequence, reporting
// false for unset values.
func plain(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil, false
		}

		items := make([]any, rv.Len())
		for j := range items {
			items[j], _ = plain(rv.Index(j).Interface())
		}

		return items, true

	default:
		return v, true
	}
}
