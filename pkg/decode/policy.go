// Package decode turns captured process output into text under a named policy.
package decode

import (
	"fmt"
	"unicode/utf8"

	"github.com/aretw0/tether/pkg/domain"
	"golang.org/x/text/transform"
)

// Policy names accepted by ByName.
const (
	NameLossy  = "lossy"
	NameStrict = "strict"
)

// Policy converts raw bytes to text.
// replaced reports whether any input sequence was substituted.
type Policy interface {
	Name() string
	Decode(b []byte) (text string, replaced bool, err error)
}

// Lossy replaces every maximal ill-formed UTF-8 subpart with one U+FFFD, so a
// multibyte sequence cut short by a killed writer yields a single replacement.
// It never fails.
var Lossy Policy = lossy{}

// Strict rejects ill-formed UTF-8 with domain.ErrInvalidEncoding.
var Strict Policy = strict{}

type lossy struct{}

func (lossy) Name() string { return NameLossy }

func (lossy) Decode(b []byte) (string, bool, error) {
	if utf8.Valid(b) {
		return string(b), false, nil
	}
	out, _, err := transform.Bytes(replaceSubparts{}, b)
	if err != nil {
		return string([]rune(string(b))), true, nil
	}
	return string(out), true, nil
}

const replacement = "\uFFFD"

// replaceSubparts substitutes U+FFFD for each maximal subpart of an ill-formed
// sequence (Unicode 3-7, the WHATWG decoder rule).
type replaceSubparts struct{ transform.NopResetter }

func (replaceSubparts) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r != utf8.RuneError || size > 1 {
			if nDst+size > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
			nSrc += size
			continue
		}

		n, complete := maximalSubpart(src[nSrc:])
		if !complete && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if nDst+len(replacement) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], replacement)
		nSrc += n
	}
	return nDst, nSrc, nil
}

// maximalSubpart returns the length of the ill-formed subpart at the head of b.
// complete is false when b ends inside a sequence that more input could finish.
func maximalSubpart(b []byte) (n int, complete bool) {
	need, lo, hi := 0, byte(0x80), byte(0xBF)
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 2
	case c == 0xE0:
		need, lo = 3, 0xA0
	case c == 0xED:
		need, hi = 3, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 3
	case c == 0xF0:
		need, lo = 4, 0x90
	case c >= 0xF1 && c <= 0xF3:
		need = 4
	case c == 0xF4:
		need, hi = 4, 0x8F
	default:
		return 1, true
	}

	n = 1
	if n < len(b) && b[n] >= lo && b[n] <= hi {
		n++
		for n < need && n < len(b) && b[n] >= 0x80 && b[n] <= 0xBF {
			n++
		}
	}
	return n, n < len(b) || n >= need
}

type strict struct{}

func (strict) Name() string { return NameStrict }

func (strict) Decode(b []byte) (string, bool, error) {
	if !utf8.Valid(b) {
		return "", false, fmt.Errorf("%w (%d bytes)", domain.ErrInvalidEncoding, len(b))
	}
	return string(b), false, nil
}

// ByName resolves a policy. The empty name selects Lossy.
func ByName(name string) (Policy, error) {
	switch name {
	case "", NameLossy:
		return Lossy, nil
	case NameStrict:
		return Strict, nil
	}
	return nil, fmt.Errorf("unknown decoding policy %q", name)
}
