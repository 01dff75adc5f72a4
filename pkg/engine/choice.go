package engine

import "strings"

// OptionOther is the choice that reveals a free-text companion input.
const OptionOther = "Other"

// HouseOptions are the property types offered by the house type group.
var HouseOptions = []string{
	"Single Family Home",
	"Town House",
	"Condo",
	OptionOther,
}

// PetOptions are the pet types offered per roster row.
var PetOptions = []string{
	"Dog",
	"Cat",
	"Bird",
	"Fish",
	"Rabbit",
	"Hamster",
	"Guinea Pig",
	"Reptile",
	"Amphibian",
	OptionOther,
}

// Choice is a single-select from a fixed option set plus an "Other" escape
// hatch. The free text is kept only while "Other" is selected.
type Choice struct {
	options []string
	value   string
	other   string
}

// NewChoice builds an unselected choice over options.
func NewChoice(options []string) Choice {
	return Choice{options: options}
}

// Select picks value. Unknown values leave the choice unselected and report
// false.
func (c *Choice) Select(value string) bool {
	value = strings.TrimSpace(value)
	if !c.has(value) {
		c.value = ""
		c.other = ""
		return value == ""
	}
	c.value = value
	if value != OptionOther {
		c.other = ""
	}
	return true
}

// SetOther stores the free text. It is ignored unless "Other" is selected.
func (c *Choice) SetOther(text string) {
	if c.value != OptionOther {
		c.other = ""
		return
	}
	c.other = text
}

// Value returns the selected option or "" when nothing is selected.
func (c Choice) Value() string { return c.value }

// Other returns the free text.
func (c Choice) Other() string { return c.other }

// OtherVisible reports whether the free-text input is shown and required.
func (c Choice) OtherVisible() bool { return c.value == OptionOther }

// Options returns the option set.
func (c Choice) Options() []string { return c.options }

func (c Choice) has(value string) bool {
	for _, option := range c.options {
		if option == value {
			return true
		}
	}
	return false
}
