// Package slider models a bounded integer edited through two linked widgets: a
// numeric text box and a range control. Both widgets always display the same
// clamped value once an edit is committed.
package slider

import (
	"math"
	"strconv"
	"strings"
)

// Config describes a slider at construction time.
type Config struct {
	Name     string
	Label    string
	Min      int
	Max      int
	Step     int
	Value    int
	Required bool
}

// Control holds the committed value of a slider plus any uncommitted text the
// user typed into the number box.
type Control struct {
	name     string
	label    string
	min      int
	max      int
	step     int
	required bool

	value   int
	pending string
	dirty   bool
}

// New builds a control, swapping inverted bounds and clamping the initial
// value.
func New(cfg Config) *Control {
	lo, hi := cfg.Min, cfg.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	step := cfg.Step
	if step <= 0 {
		step = 1
	}
	c := &Control{
		name:     cfg.Name,
		label:    cfg.Label,
		min:      lo,
		max:      hi,
		step:     step,
		required: cfg.Required,
	}
	c.value = Clamp(cfg.Value, lo, hi)
	return c
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ParseInt reads the leading integer of raw the way a browser number box is
// read: surrounding whitespace is ignored, an optional sign is accepted, and
// parsing stops at the first non-digit. ok is false when no digit was found.
func ParseInt(raw string) (value int, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	end := 0
	if s[0] == '+' || s[0] == '-' {
		end = 1
	}
	digits := end
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == end {
		return 0, false
	}
	n, err := strconv.Atoi(s[:digits])
	if err != nil {
		// Overflow: saturate in the direction of the sign.
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return n, true
}

// Type reports the number box text. Nothing is committed until Commit or
// Enter is called, mirroring a change event that fires on blur.
func (c *Control) Type(text string) {
	c.pending = text
	c.dirty = true
}

// Commit clamps the pending number box text into the value. Text without a
// leading integer commits Min.
func (c *Control) Commit() int {
	if !c.dirty {
		return c.value
	}
	c.dirty = false
	n, ok := ParseInt(c.pending)
	if !ok {
		n = c.min
	}
	c.value = Clamp(n, c.min, c.max)
	c.pending = ""
	return c.value
}

// Enter commits immediately without waiting for focus loss.
func (c *Control) Enter() int {
	return c.Commit()
}

// SetNumber types text into the number box and commits it.
func (c *Control) SetNumber(text string) int {
	c.Type(text)
	return c.Commit()
}

// SetRange moves the range control. The number box follows it.
func (c *Control) SetRange(value int) int {
	c.dirty = false
	c.pending = ""
	c.value = Clamp(value, c.min, c.max)
	return c.value
}

// Reset restores value, discarding pending text.
func (c *Control) Reset(value int) {
	c.SetRange(value)
}

// Value returns the committed value.
func (c *Control) Value() int { return c.value }

// Number returns what the number box shows: pending text while editing,
// otherwise the committed value.
func (c *Control) Number() string {
	if c.dirty {
		return c.pending
	}
	return strconv.Itoa(c.value)
}

// Range returns what the range control shows.
func (c *Control) Range() string { return strconv.Itoa(c.value) }

// Synced reports whether both widgets display the same value.
func (c *Control) Synced() bool { return c.Number() == c.Range() }

func (c *Control) Name() string   { return c.name }
func (c *Control) Label() string  { return c.label }
func (c *Control) Min() int       { return c.min }
func (c *Control) Max() int       { return c.max }
func (c *Control) Step() int      { return c.step }
func (c *Control) Required() bool { return c.required }

// InputName is the form name of the number box. The range control carries
// Name itself so the submitted payload holds the committed value.
func (c *Control) InputName() string { return c.name + "_input" }

// CommittedName is the form name of the hidden field that echoes the last
// committed value. A server round-trip compares it with the number box to
// tell which of the two widgets the user edited.
func (c *Control) CommittedName() string { return c.name + "_committed" }
