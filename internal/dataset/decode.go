package dataset

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxDecodedBytes bounds the size of a decompressed dataset.
const MaxDecodedBytes int64 = 1 << 30

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Codec names a compression format.
type Codec string

const (
	CodecPlain Codec = "plain"
	CodecGzip  Codec = "gzip"
	CodecZstd  Codec = "zstd"
)

// sniffCodec guesses the compression of raw from its magic bytes.
func sniffCodec(raw []byte) Codec {
	switch {
	case bytes.HasPrefix(raw, gzipMagic):
		return CodecGzip
	case bytes.HasPrefix(raw, zstdMagic):
		return CodecZstd
	default:
		return CodecPlain
	}
}

// strategies returns the codecs to try for raw, sniffed codec first. File
// extensions lie often enough in exported datasets that every codec is tried.
func strategies(raw []byte) []Codec {
	first := sniffCodec(raw)
	out := []Codec{first}
	for _, c := range []Codec{CodecGzip, CodecZstd, CodecPlain} {
		if c != first {
			out = append(out, c)
		}
	}
	return out
}

// decompress decodes raw with codec, refusing output larger than limit.
func decompress(raw []byte, codec Codec, limit int64) ([]byte, error) {
	var r io.Reader
	switch codec {
	case CodecPlain:
		if int64(len(raw)) > limit {
			return nil, fmt.Errorf("dataset exceeds %d bytes", limit)
		}
		return raw, nil
	case CodecGzip:
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case CodecZstd:
		zr, err := zstd.NewReader(bytes.NewReader(raw), zstd.WithDecoderMaxMemory(uint64(limit)))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}

	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec, err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%s: decoded dataset exceeds %d bytes", codec, limit)
	}
	return out, nil
}

// toUTF8 normalizes text to UTF-8. A UTF-8 BOM is stripped, UTF-16 with a BOM
// is decoded, and anything left that is not valid UTF-8 is read as
// Windows-1252, the usual encoding of spreadsheet exports.
func toUTF8(b []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), b)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	if utf8.Valid(out) {
		return out, nil
	}
	out, err = charmap.Windows1252.NewDecoder().Bytes(out)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return out, nil
}
