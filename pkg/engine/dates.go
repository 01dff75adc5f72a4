package engine

import (
	"strings"
	"time"
)

// Date field names. The single date field is renamed when the multi-day toggle
// is on.
const (
	FieldPreferredDate = "preferredDate"
	FieldStartDate     = "startDate"
	FieldEndDate       = "endDate"
	FieldMultiDay      = "multiDay"
)

// DateLayout is the wire format of date inputs.
const DateLayout = "2006-01-02"

// DateRange is the scheduling group: one preferred date, or a start/end pair
// when the service supports multi-day requests and the toggle is on.
type DateRange struct {
	supported bool
	multiDay  bool
	date      string
	end       string
}

// NewDateRange builds the group for a service.
func NewDateRange(supportsMultiDay bool) DateRange {
	return DateRange{supported: supportsMultiDay}
}

// Supported reports whether the multi-day toggle is offered.
func (d DateRange) Supported() bool { return d.supported }

// MultiDay reports the toggle state.
func (d DateRange) MultiDay() bool { return d.multiDay }

// SetMultiDay flips the toggle. Turning it off clears the end date. The
// toggle stays off for services that do not support it.
func (d *DateRange) SetMultiDay(on bool) {
	if !d.supported {
		on = false
	}
	d.multiDay = on
	if !on {
		d.end = ""
	}
}

// SetDate stores the single date, or the start date when multi-day is on.
func (d *DateRange) SetDate(value string) { d.date = strings.TrimSpace(value) }

// SetEnd stores the end date. Ignored while multi-day is off.
func (d *DateRange) SetEnd(value string) {
	if !d.multiDay {
		d.end = ""
		return
	}
	d.end = strings.TrimSpace(value)
}

// Date returns the single or start date.
func (d DateRange) Date() string { return d.date }

// End returns the end date.
func (d DateRange) End() string { return d.end }

// FieldName is the current identifier of the date field.
func (d DateRange) FieldName() string {
	if d.multiDay {
		return FieldStartDate
	}
	return FieldPreferredDate
}

// Label is the current label of the date field.
func (d DateRange) Label() string {
	if d.multiDay {
		return "Start Date"
	}
	return "Preferred Date"
}

// Reset restores the default single-date state.
func (d *DateRange) Reset() {
	d.multiDay = false
	d.date = ""
	d.end = ""
}

func parseDate(value string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
