package utf

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/common/littleendian"

	"github.com/rony4d/go-textwindow/utils/window"
)

// Format describes how a Unicode Transformation Format groups code units into
// code points.
type Format interface {
	Name() string

	// UnitWidth is the code unit size in bytes.
	UnitWidth() int

	// MaxUnits is the longest code point in code units.
	MaxUnits() int

	// DecodeLength returns how many code units the code point starting with
	// `unit` occupies, or 0 when `unit` cannot start a code point.
	DecodeLength(unit uint32) int

	// DecodeValue assembles a code point from exactly DecodeLength(units[0]) units.
	DecodeValue(units []uint32) (rune, error)

	// Encode appends r to dst.
	Encode(dst []byte, r rune, littleEndian bool) []byte
}

var (
	UTF8  Format = utf8Format{}
	UTF16 Format = utf16Format{}
	UTF32 Format = utf32Format{}
)

func normalize(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name))
}

// FormatByName resolves "utf8", "utf-16", "UTF32" and similar spellings.
func FormatByName(name string) (Format, error) {
	switch normalize(name) {
	case "utf8":
		return UTF8, nil
	case "utf16":
		return UTF16, nil
	case "utf32":
		return UTF32, nil
	default:
		return nil, fmt.Errorf("unknown encoding: %q (valid: utf8, utf16, utf32)", name)
	}
}

// Encoding is a format together with a byte order and byte-order mark policy.
type Encoding struct {
	Format       Format
	LittleEndian bool
	BOM          bool
}

// ParseEncoding resolves an encoding label. The bare "utf16" and "utf32"
// labels mean big-endian with a byte-order mark; the "le"/"be" suffixed ones
// carry no mark.
func ParseEncoding(name string) (Encoding, error) {
	n := normalize(name)
	switch {
	case n == "utf8":
		return Encoding{Format: UTF8}, nil
	case n == "utf8bom":
		return Encoding{Format: UTF8, BOM: true}, nil
	case strings.HasSuffix(n, "le"), strings.HasSuffix(n, "be"):
		f, err := FormatByName(n[:len(n)-2])
		if err != nil || f == UTF8 {
			return Encoding{}, fmt.Errorf("unknown encoding: %q", name)
		}
		return Encoding{Format: f, LittleEndian: strings.HasSuffix(n, "le")}, nil
	default:
		f, err := FormatByName(n)
		if err != nil {
			return Encoding{}, err
		}
		return Encoding{Format: f, BOM: true}, nil
	}
}

type utf8Format struct{}

func (utf8Format) Name() string  { return "utf-8" }
func (utf8Format) UnitWidth() int { return 1 }
func (utf8Format) MaxUnits() int  { return 4 }

// DecodeLength classifies a UTF-8 lead byte:
//
//	0xxxxxxx -> 1, 10xxxxxx -> continuation, 110xxxxx -> 2, 1110xxxx -> 3, 11110xxx -> 4
func (utf8Format) DecodeLength(unit uint32) int {
	return utf8Length(unit)
}

func utf8Length(b uint32) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	case b < 0xF8:
		return 4
	default:
		return 0
	}
}

var utf8LeadMask = [...]uint32{0, 0x7F, 0x1F, 0x0F, 0x07}

func (utf8Format) DecodeValue(units []uint32) (rune, error) {
	v := units[0] & utf8LeadMask[len(units)]
	for _, u := range units[1:] {
		if u&0xC0 != 0x80 {
			return utf8.RuneError, fmt.Errorf("%w: utf-8 continuation byte %#02x", window.ErrMalformed, u)
		}
		v = v<<6 | u&0x3F
	}
	return rune(v), nil
}

func (utf8Format) Encode(dst []byte, r rune, _ bool) []byte {
	return utf8.AppendRune(dst, r)
}

type utf16Format struct{}

func (utf16Format) Name() string  { return "utf-16" }
func (utf16Format) UnitWidth() int { return 2 }
func (utf16Format) MaxUnits() int  { return 2 }

func (utf16Format) DecodeLength(unit uint32) int {
	switch {
	case unit < 0xD800 || unit > 0xDFFF:
		return 1
	case unit < 0xDC00:
		return 2
	default:
		return 0
	}
}

func (utf16Format) DecodeValue(units []uint32) (rune, error) {
	if len(units) == 1 {
		return rune(units[0]), nil
	}
	lo := units[1]
	if lo < 0xDC00 || lo > 0xDFFF {
		return utf8.RuneError, fmt.Errorf("%w: unpaired utf-16 high surrogate %#04x", window.ErrMalformed, units[0])
	}
	return rune((units[0]-0xD800)<<10+(lo-0xDC00)) + 0x10000, nil
}

func (utf16Format) Encode(dst []byte, r rune, littleEndian bool) []byte {
	if r >= 0x10000 {
		hi, lo := utf16.EncodeRune(r)
		dst = appendUnit16(dst, uint16(hi), littleEndian)
		return appendUnit16(dst, uint16(lo), littleEndian)
	}
	return appendUnit16(dst, uint16(r), littleEndian)
}

func appendUnit16(dst []byte, u uint16, littleEndian bool) []byte {
	if littleEndian {
		return append(dst, littleendian.Uint16ToBytes(u)...)
	}
	return append(dst, bigendian.Uint16ToBytes(u)...)
}

type utf32Format struct{}

func (utf32Format) Name() string  { return "utf-32" }
func (utf32Format) UnitWidth() int { return 4 }
func (utf32Format) MaxUnits() int  { return 1 }

func (utf32Format) DecodeLength(uint32) int {
	return 1
}

func (utf32Format) DecodeValue(units []uint32) (rune, error) {
	return rune(units[0]), nil
}

func (utf32Format) Encode(dst []byte, r rune, littleEndian bool) []byte {
	if littleEndian {
		return append(dst, littleendian.Uint32ToBytes(uint32(r))...)
	}
	return append(dst, bigendian.Uint32ToBytes(uint32(r))...)
}

// Encode encodes runes in format f, optionally prefixed by a byte-order mark.
func Encode(f Format, runes []rune, littleEndian, bom bool) []byte {
	out := make([]byte, 0, len(runes)*f.UnitWidth())
	if bom {
		out = f.Encode(out, ByteOrderMark, littleEndian)
	}
	for _, r := range runes {
		out = f.Encode(out, r, littleEndian)
	}
	return out
}
