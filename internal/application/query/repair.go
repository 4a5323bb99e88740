package query

import (
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var errNoObject = errors.New("no JSON object in model output")

// endOfTurnMarkers are chat-template tokens small models tend to leak.
var endOfTurnMarkers = []string{"</s>", "<|end|>", "<|endoftext|>", "<|eot_id|>", "<|im_end|>"}

// RepairJSON turns raw model output into a parseable JSON object. The prompt
// primes the model with an opening brace, so output that does not start with
// one is treated as the tail of an object.
func RepairJSON(raw string) (string, error) {
	text := stripFences(raw)
	for _, marker := range endOfTurnMarkers {
		text = strings.ReplaceAll(text, marker, "")
	}
	text = strings.TrimSpace(text)

	if idx := strings.LastIndex(text, promptAnswerMarker); idx >= 0 {
		text = strings.TrimSpace(text[idx+len(promptAnswerMarker):])
	}

	switch start := strings.IndexByte(text, '{'); {
	case start < 0 && text == "":
		return "", errNoObject
	case start < 0:
		text = "{" + text
	case start > 0 && !looksLikeObjectTail(text[:start]):
		text = text[start:]
	case start > 0:
		text = "{" + text
	}

	text = cutAfterObject(text)

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return "", err
	}
	return repaired, nil
}

// stripFences removes markdown code fences, keeping the fenced body.
func stripFences(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}
	body := text[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{\"") {
		body = body[nl+1:]
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return body
}

// looksLikeObjectTail reports whether prefix is the inside of an object whose
// opening brace was part of the prompt, e.g. `"keywords": [`.
func looksLikeObjectTail(prefix string) bool {
	return strings.HasPrefix(strings.TrimSpace(prefix), `"`)
}

// cutAfterObject drops anything after the brace closing the first object.
// Unbalanced input is returned unchanged for the repair pass to close.
func cutAfterObject(text string) string {
	depth := 0
	inString := false
	escaped := false
	for i, r := range text {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return text
}
