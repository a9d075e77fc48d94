package redisfeed

import (
	"errors"
	"testing"
	"time"

	"dosage-dashboard/internal/domain/dosages"
)

func TestEncodeDecode_UsesColumnNames(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	e := dosages.DosageEvent{
		ID:          "e1",
		DeviceID:    "D1",
		StartTime:   start,
		EndTime:     dosages.TimePtr(start.Add(time.Minute)),
		StatusLabel: dosages.StringPtr("Success"),
	}

	b, err := encode(e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"id":"e1","device_id":"D1","dosage_start_time":"2024-01-01T10:00:00Z","dosage_end_time":"2024-01-01T10:01:00Z","status_log":"Success"}`
	if string(b) != want {
		t.Fatalf("unexpected payload:\n%s\nwant:\n%s", b, want)
	}

	got, err := decode(string(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "e1" || !got.IsSuccess() || got.EndTime == nil || !got.StartTime.Equal(start) {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestDecode_RejectsInvalid(t *testing.T) {
	if _, err := decode(`{"id":"e1","device_id":"D1","dosage_start_time":"2024-01-01T10:00:00Z","dosage_end_time":"2024-01-01T09:00:00Z"}`); !errors.Is(err, dosages.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if _, err := decode(`not json`); err == nil {
		t.Fatalf("expected json error")
	}
}
