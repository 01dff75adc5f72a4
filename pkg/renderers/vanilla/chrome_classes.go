package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm        ChromeClass = "of-form"
	ClassField       ChromeClass = "of-field"
	ClassDescription ChromeClass = "of-description"
	ClassErrors      ChromeClass = "of-errors"
	ClassFormErrors  ChromeClass = "of-form-errors"
	ClassActions     ChromeClass = "of-actions"
	ClassStatus      ChromeClass = "of-status"
	ClassOverlay     ChromeClass = "of-overlay"
)
