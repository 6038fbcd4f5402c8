package pipeline

import (
	"encoding/json"
	"strings"
)

// ExtractionKind tags the shapes a model reply can resolve to.
type ExtractionKind int

const (
	// ExtractedObject is a single structured record.
	ExtractedObject ExtractionKind = iota
	// ExtractedList is a list of structured records.
	ExtractedList
	// ExtractedFields is a flat key/value mapping from a line-shaped reply.
	ExtractedFields
	// ExtractedNote is a model-declared "not a transaction" signal.
	ExtractedNote
)

// Extraction is the tagged result of locating the structured payload inside
// a raw model reply. Exactly one of Object, List, Fields or Note is set,
// selected by Kind, and downstream code switches on Kind exhaustively.
type Extraction struct {
	Kind   ExtractionKind
	Object map[string]interface{}
	List   []interface{}
	Fields map[string]string
	Note   string
}

const errorSentinel = "error:"

// sentinelNote reports whether s starts with the explicit error marker the
// prompts instruct the model to use, and extracts the stated reason.
func sentinelNote(s string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(s), errorSentinel) {
		return "", false
	}
	return strings.TrimSpace(s[len(errorSentinel):]), true
}

// ExtractJSON locates a JSON payload inside a raw model reply: it strips
// markdown fences, salvages the outermost object or array, and classifies
// the parsed value. A reply the model marked with "Error:" becomes an
// ExtractedNote, not a failure. A bare top-level array is accepted as the
// transaction list even though the prompt asked for an object envelope.
func ExtractJSON(raw string) (*Extraction, error) {
	trimmed := strings.TrimSpace(raw)

	if note, ok := sentinelNote(trimmed); ok {
		return &Extraction{Kind: ExtractedNote, Note: note}, nil
	}

	clean := cleanModelReply(trimmed)
	if clean == "" || (clean[0] != '{' && clean[0] != '[' && clean[0] != '"') {
		return nil, &ExtractionError{Reason: "no structured block found", Raw: raw}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, &ExtractionError{Reason: "invalid JSON: " + err.Error(), Raw: raw}
	}

	switch v := parsed.(type) {
	case map[string]interface{}:
		if list, ok := v["transactions"].([]interface{}); ok {
			return &Extraction{Kind: ExtractedList, List: list}, nil
		}
		return &Extraction{Kind: ExtractedObject, Object: v}, nil
	case []interface{}:
		return &Extraction{Kind: ExtractedList, List: v}, nil
	case string:
		// The model answered with a bare explanatory string.
		if note, ok := sentinelNote(strings.TrimSpace(v)); ok {
			return &Extraction{Kind: ExtractedNote, Note: note}, nil
		}
		return &Extraction{Kind: ExtractedNote, Note: strings.TrimSpace(v)}, nil
	default:
		return nil, &ExtractionError{Reason: "unexpected top-level JSON value", Raw: raw}
	}
}

// ExtractKeyValueLines parses a line-shaped reply: every "key: value" line
// accumulates into a flat mapping, other lines are ignored. Missing keys
// are not an error; the coercer substitutes defaults downstream.
func ExtractKeyValueLines(raw string) (*Extraction, error) {
	trimmed := strings.TrimSpace(raw)

	if note, ok := sentinelNote(trimmed); ok {
		return &Extraction{Kind: ExtractedNote, Note: note}, nil
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(trimmed, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return &Extraction{Kind: ExtractedFields, Fields: fields}, nil
}

// cleanModelReply strips markdown fences and surrounding junk the model
// may have wrapped around the JSON payload.
func cleanModelReply(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// If there is still prose around the payload, keep only the outermost
	// object or array.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		if end := strings.LastIndex(s, "}"); end > objStart {
			s = s[objStart : end+1]
		}
	case arrStart != -1:
		if end := strings.LastIndex(s, "]"); end > arrStart {
			s = s[arrStart : end+1]
		}
	}

	return strings.TrimSpace(s)
}
