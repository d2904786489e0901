package scheduling

import (
	"fmt"
	"time"
)

const (
	slotLayout = "15:04"
	dateLayout = "2006-01-02"
)

// SlotTemplate is the clinic's fixed daily grid of bookable half-open slots,
// built from opening time, closing time, and slot length. The same template
// applies to every doctor and every day.
type SlotTemplate struct {
	slots    []string
	contains map[string]bool
}

// NewSlotTemplate builds the template. Slots start at opening and repeat
// every interval; a slot starting at or after closing is not included.
func NewSlotTemplate(opening, closing string, interval time.Duration) (*SlotTemplate, error) {
	start, err := time.Parse(slotLayout, opening)
	if err != nil {
		return nil, fmt.Errorf("parse opening time %q: %w", opening, err)
	}
	end, err := time.Parse(slotLayout, closing)
	if err != nil {
		return nil, fmt.Errorf("parse closing time %q: %w", closing, err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("slot interval must be positive, got %s", interval)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("opening %s must be before closing %s", opening, closing)
	}

	t := &SlotTemplate{contains: make(map[string]bool)}
	for cur := start; cur.Before(end); cur = cur.Add(interval) {
		slot := cur.Format(slotLayout)
		t.slots = append(t.slots, slot)
		t.contains[slot] = true
	}
	return t, nil
}

// Slots returns the full ordered slot list. The returned slice is a copy.
func (t *SlotTemplate) Slots() []string {
	out := make([]string, len(t.slots))
	copy(out, t.slots)
	return out
}

// Contains reports whether slot is part of the template.
func (t *SlotTemplate) Contains(slot string) bool {
	return t.contains[slot]
}
