package parse

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrUndecodable is returned when input is neither UTF-8 nor valid in any
// fallback encoding.
var ErrUndecodable = errors.New("input is not decodable as UTF-8 or any fallback encoding")

// DefaultFallbacks are tried in order when input is not valid UTF-8.
var DefaultFallbacks = []string{"windows-1252", "iso-8859-1"}

const utf8Name = "utf-8"

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Charset is a named legacy encoding.
type Charset struct {
	Name     string
	Encoding encoding.Encoding
}

// LookupCharset resolves an IANA encoding name such as "windows-1252".
func LookupCharset(name string) (Charset, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return Charset{}, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return Charset{}, fmt.Errorf("unsupported encoding %q", name)
	}
	return Charset{Name: strings.ToLower(name), Encoding: enc}, nil
}

// LookupCharsets resolves names in order.
func LookupCharsets(names []string) ([]Charset, error) {
	out := make([]Charset, 0, len(names))
	for _, n := range names {
		cs, err := LookupCharset(n)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// Decode returns data as text, trying UTF-8 first and then each fallback in
// order. It reports the name of the encoding that succeeded.
func Decode(data []byte, fallbacks []Charset) (string, string, error) {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), utf8Name, nil
	}
	for _, cs := range fallbacks {
		if text, ok := decodeWith(data, cs); ok {
			return text, cs.Name, nil
		}
	}
	return "", "", ErrUndecodable
}

// DecodeAs decodes data with a single named encoding and no fallback.
func DecodeAs(data []byte, name string) (string, error) {
	if strings.EqualFold(name, utf8Name) || strings.EqualFold(name, "utf8") {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid utf-8", ErrUndecodable)
		}
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	cs, err := LookupCharset(name)
	if err != nil {
		return "", err
	}
	text, ok := decodeWith(data, cs)
	if !ok {
		return "", fmt.Errorf("%w: invalid %s", ErrUndecodable, cs.Name)
	}
	return text, nil
}

// decodeWith treats replacement characters in the output as failure, since
// single-byte decoders substitute rather than error on unmapped bytes.
func decodeWith(data []byte, cs Charset) (string, bool) {
	out, err := cs.Encoding.NewDecoder().Bytes(data)
	if err != nil || !utf8.Valid(out) || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
