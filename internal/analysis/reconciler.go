package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// maxParseErrorRaw bounds the raw text kept on a ParseError.
	maxParseErrorRaw = 2000
	// maxErrorMessageRaw bounds the raw prefix quoted in the error message.
	maxErrorMessageRaw = 200
	// maxScanCandidates bounds how many "{" positions the scanner tries.
	maxScanCandidates = 256
)

var (
	errEmptyResponse      = errors.New("empty response from model")
	errUnrecognizedObject = errors.New("object has none of summary, anomalies, duplicates, advice")
)

// ParseError means the model answered but no analysis object could be
// recovered from its text.
type ParseError struct {
	Raw string // truncated raw model text
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v (raw prefix: %q)", e.Err, truncate(e.Raw, maxErrorMessageRaw))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reconcile recovers the analysis payload from raw model text that may wrap
// the JSON object in prose or code fences.
//
// Candidates are tried in order: the first balanced object carrying at least
// one analysis field, the span from the first "{" to the last "}", then the
// whole text. The last two accept any object.
func Reconcile(raw string) (Payload, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Payload{}, &ParseError{Raw: raw, Err: errEmptyResponse}
	}

	if p, ok := scanBalanced(text); ok {
		return p, nil
	}

	var firstErr error
	if span, ok := outerBraceSpan(text); ok {
		p, err := decodePayload(span)
		if err == nil {
			return p, nil
		}
		firstErr = err
	}

	p, err := decodePayload(text)
	if err == nil {
		return p, nil
	}
	if firstErr == nil {
		firstErr = err
	}

	return Payload{}, &ParseError{Raw: truncate(raw, maxParseErrorRaw), Err: firstErr}
}

func decodePayload(candidate string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// decodeRecognized is decodePayload for objects that name at least one
// analysis field, so a nested or unrelated object is never taken for the payload.
func decodeRecognized(candidate string) (Payload, error) {
	var obj looseObject
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return Payload{}, err
	}
	if !obj.has("summary", "anomalies", "duplicates", "advice") {
		return Payload{}, errUnrecognizedObject
	}
	return decodePayload(candidate)
}

// scanBalanced walks each "{" and decodes the balanced object starting there.
func scanBalanced(text string) (Payload, bool) {
	tried := 0
	for start := strings.IndexByte(text, '{'); start != -1 && tried < maxScanCandidates; tried++ {
		if end, ok := matchBrace(text, start); ok {
			if p, err := decodeRecognized(text[start : end+1]); err == nil {
				return p, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return Payload{}, false
}

// matchBrace returns the index of the "}" closing the object opened at start,
// ignoring braces inside JSON strings.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// outerBraceSpan keeps only the text from the first "{" to the last "}".
func outerBraceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Do not split a multi-byte rune.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
