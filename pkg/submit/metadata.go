package submit

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Hidden field names added to every relayed submission.
const (
	FieldTimestampISO   = "submission_timestamp_iso"
	FieldTimestampLocal = "submission_timestamp_local"
	FieldSubmissionID   = "submission_id"
)

// Timestamp layouts.
const (
	LayoutISO   = "2006-01-02T15:04:05.000Z"
	LayoutLocal = "2006-01-02 15:04:05 MST (-07:00)"
)

// Metadata identifies one submission attempt.
type Metadata struct {
	TimestampISO   string `json:"submission_timestamp_iso"`
	TimestampLocal string `json:"submission_timestamp_local"`
	SubmissionID   string `json:"submission_id"`
}

// NewMetadata stamps now, rendered in UTC and in loc, with id. A nil loc
// means time.Local; an empty id draws a random UUID.
func NewMetadata(now time.Time, loc *time.Location, id string) Metadata {
	if loc == nil {
		loc = time.Local
	}
	if id == "" {
		id = uuid.NewString()
	}
	return Metadata{
		TimestampISO:   now.UTC().Format(LayoutISO),
		TimestampLocal: now.In(loc).Format(LayoutLocal),
		SubmissionID:   id,
	}
}

// Apply adds the hidden fields to values.
func (m Metadata) Apply(values url.Values) {
	values.Set(FieldTimestampISO, m.TimestampISO)
	values.Set(FieldTimestampLocal, m.TimestampLocal)
	values.Set(FieldSubmissionID, m.SubmissionID)
}

// Fields lists the hidden fields in render order.
func (m Metadata) Fields() [][2]string {
	return [][2]string{
		{FieldTimestampISO, m.TimestampISO},
		{FieldTimestampLocal, m.TimestampLocal},
		{FieldSubmissionID, m.SubmissionID},
	}
}
