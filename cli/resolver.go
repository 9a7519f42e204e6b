package cli

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/rosetto/log"
)

// resolve is a [kong.ConfigurationLoader] that reads a YAML configuration
// file.
//
// Keys name flags, with either hyphens or underscores. Nested mappings are
// joined to their parent key with a hyphen, so both of these set
// --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Sequences set repeatable flags such as --include. Command-line flags
// override config file values. A file that cannot be parsed is ignored
// with a warning.
func resolve(r io.Reader) (kong.Resolver, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any

	if err := yaml.Unmarshal(buf, &doc); err != nil {
		log.Warn("ignoring configuration file", slog.String("error", err.Error()))

		return config{}, nil
	}

	cfg := make(config)
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over a flattened configuration file.
type config map[string]any

func (c config) flatten(prefix string, doc map[string]any) {
	for key, val := range doc {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := val.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = scalar(val)
	}
}

// scalar converts a decoded YAML value to the string form Kong parses.
// Sequences are joined with the default Kong separator.
func scalar(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case string, bool:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		part := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := scalar(item).(string); ok {
				part = append(part, s)
			}
		}

		return strings.Join(part, ",")
	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}
