package repository

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	t.Run("parses a date-only value", func(t *testing.T) {
		got, err := ParseTime("2024-01-15")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Expected %s, got %s", want, got)
		}
	})

	t.Run("parses an RFC3339 timestamp", func(t *testing.T) {
		got, err := ParseTime("2024-01-15T10:30:00Z")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Expected %s, got %s", want, got)
		}
	})

	t.Run("rejects other formats", func(t *testing.T) {
		for _, value := range []string{"", "15-01-2024", "2024/01/15"} {
			if _, err := ParseTime(value); err == nil {
				t.Errorf("Expected error for %q", value)
			}
		}
	})
}
