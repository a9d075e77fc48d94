package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dosage-dashboard/internal/domain/dosages"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCenter(clock *fakeClock) *Center {
	c := NewCenter(DefaultMax, DefaultTTL)
	c.now = clock.Now
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
	return c
}

func TestFromEvent_Classification(t *testing.T) {
	ok := FromEvent(dosages.DosageEvent{DeviceID: "D1", StatusLabel: dosages.StringPtr("Success")}, "a", time.Time{})
	if ok.Type != TypeSuccess || ok.Title != "Dose Administered" {
		t.Fatalf("unexpected success toast %+v", ok)
	}
	warn := FromEvent(dosages.DosageEvent{DeviceID: "D1"}, "b", time.Time{})
	if warn.Type != TypeWarning || warn.Title != "Dose Attempted" || warn.Message != "A dose was attempted but may need attention." {
		t.Fatalf("unexpected warning toast %+v", warn)
	}
}

func TestCenter_KeepsNewestFive(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newTestCenter(clock)

	for i := 0; i < 7; i++ {
		c.PushEvent(dosages.DosageEvent{DeviceID: "D1"})
		clock.Advance(100 * time.Millisecond)
	}

	got := c.List()
	if len(got) != 5 {
		t.Fatalf("expected 5 toasts, got %d", len(got))
	}
	if got[0].ID != "n7" || got[4].ID != "n3" {
		t.Fatalf("expected newest first n7..n3, got %s..%s", got[0].ID, got[4].ID)
	}
}

func TestCenter_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newTestCenter(clock)

	c.PushEvent(dosages.DosageEvent{DeviceID: "D1"})
	clock.Advance(3 * time.Second)
	c.PushEvent(dosages.DosageEvent{DeviceID: "D1"})

	clock.Advance(2*time.Second + time.Millisecond)
	got := c.List()
	if len(got) != 1 || got[0].ID != "n2" {
		t.Fatalf("expected only n2 alive, got %+v", got)
	}

	clock.Advance(3 * time.Second)
	if len(c.List()) != 0 {
		t.Fatalf("expected all expired")
	}
}

func TestCenter_Dismiss(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCenter(clock)
	c.PushEvent(dosages.DosageEvent{DeviceID: "D1"})
	c.PushEvent(dosages.DosageEvent{DeviceID: "D1"})

	if !c.Dismiss("n1") {
		t.Fatalf("expected n1 dismissed")
	}
	if c.Dismiss("n1") {
		t.Fatalf("expected second dismiss to miss")
	}
	if got := c.List(); len(got) != 1 || got[0].ID != "n2" {
		t.Fatalf("unexpected remaining %+v", got)
	}
}

func TestCenter_ConsumeStopsWhenChannelCloses(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCenter(clock)

	events := make(chan dosages.DosageEvent, 2)
	events <- dosages.DosageEvent{DeviceID: "D1", StatusLabel: dosages.StringPtr("Success")}
	events <- dosages.DosageEvent{DeviceID: "D2"}
	close(events)

	var delivered []Type
	c.Consume(context.Background(), events, func(n Notification) { delivered = append(delivered, n.Type) })

	if len(delivered) != 2 || delivered[0] != TypeSuccess || delivered[1] != TypeWarning {
		t.Fatalf("unexpected deliveries %v", delivered)
	}
	if len(c.List()) != 2 {
		t.Fatalf("expected 2 toasts")
	}
}
