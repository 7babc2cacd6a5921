package store

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/roach88/turing/internal/canon"
	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/tape"
)

// timeLayout keeps created_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// marshalConfig converts a Config to canonical JSON TEXT for storage.
func marshalConfig(cfg config.Config) (string, error) {
	data, err := canon.Marshal(cfg.Object())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func unmarshalConfig(data string) (config.Config, error) {
	var cfg config.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return config.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func marshalSymbol(r rune) string {
	return string(r)
}

// unmarshalSymbol decodes a single stored rune. U+FFFD is a valid symbol:
// invalid bytes in program or tape text are read as it.
func unmarshalSymbol(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || size != len(s) || !utf8.ValidString(s) {
		return 0, fmt.Errorf("invalid symbol %q", s)
	}
	return r, nil
}

func unmarshalMove(s string) (tape.Direction, error) {
	switch s {
	case tape.Left.String():
		return tape.Left, nil
	case tape.Right.String():
		return tape.Right, nil
	default:
		return 0, fmt.Errorf("invalid move %q", s)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at: %w", err)
	}
	return t, nil
}
