package scene

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumberPrecision is the number of significant digits written for
// computed attributes.
const NumberPrecision = 14

var (
	closingFlame = []byte("</" + FlameTag + ">")
	firstLine    = regexp.MustCompile(`^.+\n`)
)

// Normalize applies the textual fix-ups Apophysis expects from a written scene:
// a newline after every </flame> and no first line (the XML declaration).
func Normalize(b []byte) []byte {
	out := bytes.ReplaceAll(b, closingFlame, append(append([]byte(nil), closingFlame...), '\n'))
	return firstLine.ReplaceAll(out, nil)
}

// ArtifactFilename derives the download name for a split scene.
//
// The upload's base name loses its last extension, double quotes and
// backslashes are backslash-escaped, and "_<format>x<format>.flame" is appended:
//
//	ArtifactFilename("spiral.flame", 4) // "spiral_4x4.flame"
func ArtifactFilename(upload string, format int) string {
	base := upload
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	var sb strings.Builder
	for _, r := range base {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}

	f := strconv.Itoa(format)
	return sb.String() + "_" + f + "x" + f + ".flame"
}

// FormatNumber writes v with up to [NumberPrecision] significant digits in its
// shortest form. Very large or small magnitudes use an upper-case exponent
// with an explicit sign and a mantissa that always has a fractional part,
// e.g. 1.0E-5 and 2.5E+20.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NAN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}

	s := strconv.FormatFloat(v, 'g', NumberPrecision, 64)
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return s
	}

	mantissa, exp := s[:i], s[i+1:]
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "E" + string(sign) + digits
}

// FormatPair writes two numbers separated by a single space, the way
// flame attributes such as center and size are stored.
func FormatPair(x, y float64) string {
	return FormatNumber(x) + " " + FormatNumber(y)
}
