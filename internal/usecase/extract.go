package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// extractJSON returns the payload of the first fenced code block (optionally
// tagged json) trimmed, or the whole text trimmed when there is no fence.
func extractJSON(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// decodeModelJSON extracts the JSON payload from raw model text and decodes
// exactly one JSON value into out.
func decodeModelJSON(raw string, out any) error {
	payload := extractJSON(raw)
	if payload == "" {
		return errors.New("usecase: empty JSON payload")
	}
	dec := json.NewDecoder(bytes.NewBufferString(payload))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("usecase: decode model JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("usecase: decode model JSON: multiple JSON values")
		}
		return fmt.Errorf("usecase: decode model JSON trailing data: %w", err)
	}
	return nil
}
