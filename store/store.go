package store

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/docker/go-units"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/log"
)

var (
	ErrCodec  = lang.NewError("snapshot codec failed")
	ErrEncode = lang.NewError("snapshot encode failed")
	ErrDecode = lang.NewError("snapshot decode failed")
	ErrFile   = lang.NewError("snapshot file")
)

func codecAttr(c Codec) slog.Attr { return slog.String("codec", c.String()) }

// Reserved keys of an encoded script value.
const (
	ScriptKey = "$script"
	ParamsKey = "$params"
)

// RootKey stands for the root namespace, whose path is empty.
const RootKey = "."

func nameKey(name string) string {
	if name == "" {
		return RootKey
	}

	return name
}

func keyName(key string) string {
	if key == RootKey {
		return ""
	}

	return key
}

// Snapshot holds the data values of every namespace. Functions and calls
// are not captured; scripts are captured by source.
type Snapshot struct {
	ID         uuid.UUID                 `yaml:"id"`
	Created    time.Time                 `yaml:"created"`
	Namespaces map[string]map[string]any `yaml:"namespaces"`
}

// Store reads and writes snapshots.
type Store struct {
	logger log.Logger
	indent int
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger. If not provided, logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithIndent sets the YAML indentation width.
func WithIndent(n int) Option {
	return func(s *Store) { s.indent = n }
}

// New returns a store configured by opts.
func New(opts ...Option) *Store {
	s := &Store{indent: 2}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Capture returns a snapshot of the data values in reg. Namespaces with
// no data values are omitted.
func Capture(reg *lang.Registry) *Snapshot {
	snap := &Snapshot{
		ID:         uuid.New(),
		Created:    time.Now().UTC(),
		Namespaces: make(map[string]map[string]any),
	}

	for _, name := range reg.Names() {
		ns, _ := reg.Lookup(name)
		vars := make(map[string]any)

		for _, key := range ns.Keys() {
			if x, ok := encode(ns.Get(key)); ok {
				vars[key] = x
			}
		}

		if len(vars) > 0 {
			snap.Namespaces[nameKey(name)] = vars
		}
	}

	return snap
}

// Restore defines every captured value in reg. Sealed entries are left
// unchanged and reported by key.
func (s *Store) Restore(ctx context.Context, snap *Snapshot, reg *lang.Registry) ([]string, error) {
	var skipped []string

	for path, vars := range snap.Namespaces {
		name := keyName(path)
		ns := reg.Namespace(name)

		for key, x := range vars {
			v, err := decode(x)
			if err != nil {
				return skipped, ErrDecode.Wrap(err).With(
					slog.String("namespace", name),
					slog.String("key", key),
				)
			}

			if sc, ok := v.(*lang.Script); ok {
				sc.Name = key
			}

			if ns.Sealed(key) {
				skipped = append(skipped, join(name, key))

				continue
			}

			if err := ns.Define(key, v); err != nil {
				return skipped, err
			}
		}
	}

	slices.Sort(skipped)

	if len(skipped) > 0 {
		s.logger.WarnContext(ctx, "sealed entries not restored",
			slog.Any("keys", skipped),
		)
	}

	s.logger.DebugContext(ctx, "snapshot restored",
		slog.String("id", snap.ID.String()),
		slog.Int("namespaces", len(snap.Namespaces)),
	)

	return skipped, nil
}

func join(name, key string) string {
	if name == "" {
		return key
	}

	return name + lang.Separator + key
}

func encode(v lang.Value) (any, bool) {
	if sc, ok := v.(*lang.Script); ok {
		return map[string]any{
			ScriptKey: sc.Source,
			ParamsKey: lang.FormatParams(sc.Params),
		}, true
	}

	return lang.ToAny(v)
}

func decode(x any) (lang.Value, error) {
	if m, ok := x.(map[string]any); ok {
		if src, ok := m[ScriptKey].(string); ok {
			decl, _ := m[ParamsKey].(string)

			params, err := lang.ParamsOf(lang.String(decl))
			if err != nil {
				return nil, err
			}

			return &lang.Script{Source: src, Params: params}, nil
		}
	}

	return lang.FromAny(x)
}

// Write encodes snap to w with codec.
func (s *Store) Write(ctx context.Context, w io.Writer, snap *Snapshot, codec Codec) error {
	data, err := yaml.MarshalWithOptions(snap, yaml.Indent(s.indent))
	if err != nil {
		return ErrEncode.Wrap(err)
	}

	zw, err := codec.writer(w)
	if err != nil {
		return err
	}

	if _, err := zw.Write(data); err != nil {
		return ErrCodec.Wrap(err).With(codecAttr(codec))
	}

	if err := zw.Close(); err != nil {
		return ErrCodec.Wrap(err).With(codecAttr(codec))
	}

	s.logger.DebugContext(ctx, "snapshot written",
		slog.String("id", snap.ID.String()),
		codecAttr(codec),
		slog.String("size", units.HumanSize(float64(len(data)))),
	)

	return nil
}

// Read decodes a snapshot from r with codec.
func (s *Store) Read(ctx context.Context, r io.Reader, codec Codec) (*Snapshot, error) {
	zr, err := codec.reader(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, ErrCodec.Wrap(err).With(codecAttr(codec))
	}

	var snap Snapshot
	if err := yaml.Unmarshal(buf.Bytes(), &snap); err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	s.logger.DebugContext(ctx, "snapshot read",
		slog.String("id", snap.ID.String()),
		codecAttr(codec),
		slog.String("size", units.HumanSize(float64(buf.Len()))),
	)

	return &snap, nil
}

// Save captures reg and writes it to the file path, compressed according
// to the file name.
func (s *Store) Save(ctx context.Context, path string, reg *lang.Registry) (snap *Snapshot, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, ErrFile.Wrap(err).With(slog.String("path", path))
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ErrFile.Wrap(cerr).With(slog.String("path", path))
		}
	}()

	snap = Capture(reg)
	if err := s.Write(ctx, f, snap, CodecFor(path)); err != nil {
		return nil, err
	}

	if info, err := f.Stat(); err == nil {
		s.logger.InfoContext(ctx, "snapshot saved",
			slog.String("path", path),
			slog.String("size", units.HumanSize(float64(info.Size()))),
		)
	}

	return snap, nil
}

// Load reads the snapshot file at path and restores it into reg.
func (s *Store) Load(ctx context.Context, path string, reg *lang.Registry) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrFile.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	snap, err := s.Read(ctx, f, CodecFor(path))
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	if _, err := s.Restore(ctx, snap, reg); err != nil {
		return nil, err
	}

	return snap, nil
}
