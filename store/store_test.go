package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardnew/rosetto/lang"
)

func populate(t *testing.T) *lang.Runtime {
	t.Helper()

	rt := lang.New()

	for key, v := range map[string]lang.Value{
		"gold":      lang.Int(10),
		"debt":      lang.Int(-3),
		"ratio":     lang.Double(1.5),
		"name":      lang.String("ann"),
		"met":       lang.Bool(true),
		"bag":       lang.NewList(lang.Int(1), lang.String("two words")),
		"opts":      lang.NewListKeywords([]lang.Value{lang.Int(1)}, map[string]lang.Value{"k": lang.String("v")}),
		"inv.sword": lang.Bool(false),
		"greet": &lang.Script{
			Name:   "greet",
			Source: "Hi [print %who]",
			Params: lang.MustParseParams("who mood=fine"),
		},
	} {
		if err := rt.Define(key, v); err != nil {
			t.Fatalf("Define(%s): %v", key, err)
		}
	}

	return rt
}

func check(t *testing.T, rt *lang.Runtime) {
	t.Helper()

	root := rt.Registry().Root()

	for key, want := range map[string]string{
		"gold":      "10",
		"debt":      "-3",
		"ratio":     "1.5",
		"name":      "ann",
		"met":       "true",
		"bag":       `(1 "two words")`,
		"opts":      "(1 k=v)",
		"inv.sword": "false",
	} {
		if got := root.Get(key); got.String() != want {
			t.Errorf("%s = %s, want %s", key, got, want)
		}
	}

	sc, ok := root.Get("greet").(*lang.Script)
	if !ok {
		t.Fatalf("greet = %T, want *lang.Script", root.Get("greet"))
	}

	if sc.Source != "Hi [print %who]" || lang.FormatParams(sc.Params) != "who mood=fine" {
		t.Errorf("greet = %q (%s)", sc.Source, lang.FormatParams(sc.Params))
	}
}

func TestCapture(t *testing.T) {
	snap := Capture(populate(t).Registry())

	if got := len(snap.Namespaces); got != 2 {
		t.Errorf("captured %d namespaces, want 2: %v", got, snap.Namespaces)
	}

	if _, ok := snap.Namespaces[RootKey]["print"]; ok {
		t.Error("captured a function")
	}

	if snap.Namespaces["inv"]["sword"] != false {
		t.Errorf("inv.sword = %v", snap.Namespaces["inv"]["sword"])
	}
}

func TestWriteRead(t *testing.T) {
	for _, codec := range []Codec{CodecYAML, CodecLZ4, CodecXZ} {
		t.Run(codec.String(), func(t *testing.T) {
			s := New()
			snap := Capture(populate(t).Registry())

			var buf bytes.Buffer
			if err := s.Write(t.Context(), &buf, snap, codec); err != nil {
				t.Fatalf("Write: %v", err)
			}

			got, err := s.Read(t.Context(), &buf, codec)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}

			if got.ID != snap.ID {
				t.Errorf("ID = %s, want %s", got.ID, snap.ID)
			}

			rt := lang.New()
			if _, err := s.Restore(t.Context(), got, rt.Registry()); err != nil {
				t.Fatalf("Restore: %v", err)
			}

			check(t, rt)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	s := New()
	path := filepath.Join(t.TempDir(), "save"+CodecXZ.Ext())

	snap, err := s.Save(t.Context(), path, populate(t).Registry())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rt := lang.New()

	got, err := s.Load(t.Context(), path, rt.Registry())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.ID != snap.ID {
		t.Errorf("ID = %s, want %s", got.ID, snap.ID)
	}

	check(t, rt)
}

func TestRestore_Sealed(t *testing.T) {
	s := New()
	snap := Capture(populate(t).Registry())

	rt := lang.New()
	_ = rt.Define("gold", lang.Int(99))
	rt.Registry().Root().Seal("gold")

	skipped, err := s.Restore(t.Context(), snap, rt.Registry())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if !slices.Equal(skipped, []string{"gold"}) {
		t.Errorf("skipped = %v, want [gold]", skipped)
	}

	if got := rt.Registry().Root().Get("gold"); got != lang.Int(99) {
		t.Errorf("gold = %v, want 99", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := New().Load(t.Context(), filepath.Join(t.TempDir(), "none.yaml"), lang.New().Registry())
	if !errors.Is(err, ErrFile) {
		t.Errorf("Load error = %v, want %v", err, ErrFile)
	}
}

func TestCodecFor(t *testing.T) {
	tests := []struct {
		name string
		want Codec
	}{
		{"a.yaml", CodecYAML},
		{"a.yml", CodecYAML},
		{"a.yaml.lz4", CodecLZ4},
		{"a.yaml.xz", CodecXZ},
	}

	for _, tt := range tests {
		if got := CodecFor(tt.name); got != tt.want {
			t.Errorf("CodecFor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
