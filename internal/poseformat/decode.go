// Package poseformat decodes legacy .pose dumps: one Python dict literal per
// line, with numpy scalar wrappers around the coordinates.
package poseformat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/heimdex/heimdex-pose/internal/keypoints"
)

var (
	ErrSyntax = errors.New("invalid pose record syntax")
	ErrRecord = errors.New("invalid pose record")
)

var numpyScalar = regexp.MustCompile(`np\.float\d+\(([^)]+)\)`)

// DecodeLine parses one record into a frame. Keys other than body, face,
// left_hand and right_hand are ignored; None values decode as missing arrays.
func DecodeLine(line string) (keypoints.Frame, error) {
	var frame keypoints.Frame

	doc, err := literalToJSON(CleanLine(line))
	if err != nil {
		return frame, err
	}
	if len(doc) == 0 || doc[0] != '{' {
		return frame, fmt.Errorf("%w: record is not a mapping", ErrRecord)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return frame, fmt.Errorf("%w: %v", ErrRecord, err)
	}

	// Keys match exactly; json.Unmarshal into a struct would fold case.
	arrays := []struct {
		key string
		dst *[][]float64
	}{
		{"body", &frame.Body},
		{"face", &frame.Face},
		{"left_hand", &frame.LeftHand},
		{"right_hand", &frame.RightHand},
	}
	for _, a := range arrays {
		raw, ok := fields[a.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, a.dst); err != nil {
			return keypoints.Frame{}, fmt.Errorf("%w: %s: %v", ErrRecord, a.key, err)
		}
	}
	return frame, nil
}

// CleanLine replaces np.floatNN(v) wrappers with v.
func CleanLine(line string) string {
	return numpyScalar.ReplaceAllString(line, "$1")
}

// literalToJSON rewrites a Python literal (dicts, lists, tuples, strings,
// numbers, True/False/None) as JSON. Plain JSON passes through unchanged.
func literalToJSON(src string) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(src))

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '{' || c == '[' || c == ':' || c == ',':
			out.WriteByte(c)
			i++
		case c == '(':
			out.WriteByte('[')
			i++
		case c == '}' || c == ']' || c == ')':
			trimTrailingComma(&out)
			if c == ')' {
				c = ']'
			}
			out.WriteByte(c)
			i++
		case c == '\'' || c == '"':
			s, n, err := readString(src[i:])
			if err != nil {
				return nil, fmt.Errorf("%w at offset %d: %v", ErrSyntax, i, err)
			}
			enc, _ := json.Marshal(s)
			out.Write(enc)
			i += n
		case isNumberStart(c):
			j := i + 1
			for j < len(src) && isNumberByte(src[j]) {
				j++
			}
			v, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w at offset %d: bad number %q", ErrSyntax, i, src[i:j])
			}
			out.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			i = j
		case isIdentByte(c):
			j := i + 1
			for j < len(src) && (isIdentByte(src[j]) || (src[j] >= '0' && src[j] <= '9')) {
				j++
			}
			switch ident := src[i:j]; ident {
			case "True":
				out.WriteString("true")
			case "False":
				out.WriteString("false")
			case "None":
				out.WriteString("null")
			case "true", "false", "null":
				out.WriteString(ident)
			default:
				return nil, fmt.Errorf("%w at offset %d: unsupported identifier %q", ErrSyntax, i, ident)
			}
			i = j
		default:
			return nil, fmt.Errorf("%w at offset %d: unexpected %q", ErrSyntax, i, c)
		}
	}
	return out.Bytes(), nil
}

// readString reads a quoted string starting at s[0] and returns its value
// and the number of bytes consumed.
func readString(s string) (string, int, error) {
	quote := s[0]
	var b []byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case quote:
			return string(b), i + 1, nil
		case '\\':
			i++
			if i >= len(s) {
				return "", 0, errors.New("unterminated escape")
			}
			switch s[i] {
			case 'n':
				b = append(b, '\n')
			case 't':
				b = append(b, '\t')
			case 'r':
				b = append(b, '\r')
			default:
				b = append(b, s[i])
			}
		default:
			b = append(b, c)
		}
	}
	return "", 0, errors.New("unterminated string")
}

// trimTrailingComma drops a comma left before a closing bracket, as in (1,).
func trimTrailingComma(out *bytes.Buffer) {
	if n := out.Len(); n > 0 && out.Bytes()[n-1] == ',' {
		out.Truncate(n - 1)
	}
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '-' || c == '+'
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
