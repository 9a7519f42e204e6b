package store

import (
	"io"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Codec selects how snapshot YAML is compressed on disk.
type Codec int

const (
	CodecYAML Codec = iota
	CodecLZ4
	CodecXZ
)

func (c Codec) String() string {
	switch c {
	case CodecYAML:
		return "yaml"
	case CodecLZ4:
		return "lz4"
	case CodecXZ:
		return "xz"
	default:
		return "unknown"
	}
}

// Ext returns the file name extension of the codec.
func (c Codec) Ext() string {
	switch c {
	case CodecLZ4:
		return ".yaml.lz4"
	case CodecXZ:
		return ".yaml.xz"
	default:
		return ".yaml"
	}
}

// CodecFor returns the codec for a file name: ".lz4" and ".xz" suffixes
// select compression, anything else is plain YAML.
func CodecFor(name string) Codec {
	switch {
	case strings.HasSuffix(name, ".lz4"):
		return CodecLZ4
	case strings.HasSuffix(name, ".xz"):
		return CodecXZ
	default:
		return CodecYAML
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// writer wraps w in the codec's compressor. Closing the result flushes the
// compressor but does not close w.
func (c Codec) writer(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecXZ:
		zw, err := xz.NewWriter(w)
		if err != nil {
			return nil, ErrCodec.Wrap(err).With(codecAttr(c))
		}

		return zw, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

// reader wraps r in the codec's decompressor.
func (c Codec) reader(r io.Reader) (io.Reader, error) {
	switch c {
	case CodecLZ4:
		return lz4.NewReader(r), nil
	case CodecXZ:
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, ErrCodec.Wrap(err).With(codecAttr(c))
		}

		return zr, nil
	default:
		return r, nil
	}
}
