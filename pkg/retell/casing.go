package retell

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ErrTrailingJSON is returned when a body holds more than one JSON value.
var ErrTrailingJSON = errors.New("unexpected data after top-level JSON value")

// Underscore converts a camelCase, PascalCase or kebab-case key into
// snake_case. Runs of capitals are kept together as one word, so "callID"
// becomes "call_id" and "HTTPStatus" becomes "http_status". Keys that are
// already snake_case are returned unchanged.
func Underscore(key string) string {
	runes := []rune(key)

	var out strings.Builder

	out.Grow(len(key) + 4)

	for i, r := range runes {
		switch {
		case r == '-' || r == ' ':
			out.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && needsBreak(runes, i) {
				out.WriteRune('_')
			}

			out.WriteRune(unicode.ToLower(r))
		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}

// needsBreak reports whether an underscore goes before the capital at i.
func needsBreak(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '_' || prev == '-' || prev == ' ' {
		return false
	}

	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	// Last capital of an acronym followed by a lowercase letter: "HTTPStatus".
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// jsonFrame tracks the container being written by normalizeKeys.
type jsonFrame struct {
	object    bool
	expectKey bool
	count     int
}

// normalizeKeys rewrites every object key of a JSON document with Underscore.
// It streams tokens so key order, array layout and nesting are preserved and
// numbers keep their exact textual form.
func normalizeKeys(data []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var (
		buf   bytes.Buffer
		stack []*jsonFrame
		done  bool
	)

	buf.Grow(len(data))

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading JSON token: %w", err)
		}

		if len(stack) == 0 && done {
			return nil, ErrTrailingJSON
		}

		var top *jsonFrame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}

		if delim, ok := token.(json.Delim); ok {
			switch delim {
			case '{', '[':
				beforeValue(&buf, top)
				buf.WriteByte(byte(delim))
				stack = append(stack, &jsonFrame{object: delim == '{', expectKey: delim == '{'})
			default:
				buf.WriteByte(byte(delim))
				stack = stack[:len(stack)-1]

				if len(stack) == 0 {
					done = true
				} else {
					afterValue(stack[len(stack)-1])
				}
			}

			continue
		}

		if top != nil && top.object && top.expectKey {
			key, _ := token.(string)
			if top.count > 0 {
				buf.WriteByte(',')
			}

			err = writeScalar(&buf, Underscore(key))
			if err != nil {
				return nil, err
			}

			buf.WriteByte(':')
			top.expectKey = false

			continue
		}

		beforeValue(&buf, top)

		err = writeScalar(&buf, token)
		if err != nil {
			return nil, err
		}

		if top == nil {
			done = true
		} else {
			afterValue(top)
		}
	}

	if len(stack) > 0 || !done {
		return nil, fmt.Errorf("reading JSON token: %w", io.ErrUnexpectedEOF)
	}

	return buf.Bytes(), nil
}

func beforeValue(buf *bytes.Buffer, top *jsonFrame) {
	if top != nil && !top.object && top.count > 0 {
		buf.WriteByte(',')
	}
}

func afterValue(top *jsonFrame) {
	top.count++
	if top.object {
		top.expectKey = true
	}
}

func writeScalar(buf *bytes.Buffer, token json.Token) error {
	switch value := token.(type) {
	case nil:
		buf.WriteString("null")
	case json.Number:
		buf.WriteString(value.String())
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding JSON token: %w", err)
		}

		buf.Write(encoded)
	}

	return nil
}
