package engine

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/roster"
	"github.com/goliatone/go-orderform/pkg/slider"
)

// Base field names shared by every order form.
const (
	FieldService        = "service"
	FieldToken          = "form_token"
	FieldCustomerName   = "customerName"
	FieldCustomerEmail  = "customerEmail"
	FieldCustomerPhone  = "customerPhone"
	FieldServiceAddress = "serviceAddress"
	FieldDetails        = "details"

	FieldHouseType      = "houseType"
	FieldHouseTypeOther = "houseTypeOther"
	FieldWindowCount    = "windowCount"
	FieldPetCount       = "petCount"
	FieldKidCount       = "kidCount"
)

// Slider bounds and defaults of the order form groups.
const (
	WindowMin, WindowMax, WindowDefault = 1, 80, 10
	PetMin, PetMax, PetDefault          = 1, 12, 1
	KidMin, KidMax, KidDefault          = 1, 10, 1
	AgeMin, AgeMax, AgeDefault          = 0, 17, 8
)

// Validation messages surfaced on fields.
const (
	MessageRequired       = "Please fill out this field."
	MessageSelect         = "Please select an item in the list."
	MessageInvalidEmail   = "Please enter a valid email address."
	MessageInvalidDate    = "Please enter a valid date."
	MessageEndBeforeStart = "End date must be on or after the start date."
)

// PetTypeField returns the name of the i-th (1-based) pet type select.
func PetTypeField(i int) string { return "petType" + strconv.Itoa(i) }

// PetTypeOtherField returns the name of the i-th (1-based) pet "Other" input.
func PetTypeOtherField(i int) string { return "petTypeOther" + strconv.Itoa(i) }

// ChildAgeField returns the name of the i-th (1-based) child age slider.
func ChildAgeField(i int) string { return "child" + strconv.Itoa(i) + "Age" }

// Order is the state of one order form: the base contact fields plus the
// field groups its service descriptor asks for. Groups are created once and
// never torn down; rosters resize in place.
type Order struct {
	service *catalog.ServiceDescriptor
	token   string

	name    string
	email   string
	phone   string
	address string
	details string

	house   *Choice
	windows *slider.Control

	petCount *slider.Control
	pets     *roster.Roster[Choice]

	kidCount *slider.Control
	kids     *roster.Roster[*slider.Control]

	dates DateRange
}

// NewOrder builds a fresh order form for desc with a new instance token.
func NewOrder(desc *catalog.ServiceDescriptor) *Order {
	if desc == nil {
		desc = catalog.Builtin().Default()
	}
	o := &Order{
		service: desc,
		token:   uuid.NewString(),
		dates:   NewDateRange(desc.SupportsMultiDayDateRange),
	}

	if desc.NeedsHouseType {
		house := NewChoice(HouseOptions)
		o.house = &house
	}
	if desc.NeedsWindowCount {
		o.windows = slider.New(slider.Config{
			Name: FieldWindowCount, Label: "How many windows?",
			Min: WindowMin, Max: WindowMax, Value: WindowDefault, Required: true,
		})
	}
	if desc.NeedsPetSetup {
		o.petCount = slider.New(slider.Config{
			Name: FieldPetCount, Label: "How many pets?",
			Min: PetMin, Max: PetMax, Value: PetDefault, Required: true,
		})
		o.pets = roster.New(o.petCount.Value(), func(int) Choice { return NewChoice(PetOptions) })
	}
	if desc.NeedsBabysittingSetup {
		o.kidCount = slider.New(slider.Config{
			Name: FieldKidCount, Label: "How many kids?",
			Min: KidMin, Max: KidMax, Value: KidDefault, Required: true,
		})
		o.kids = roster.New(o.kidCount.Value(), newChildAge)
	}
	return o
}

func newChildAge(index int) *slider.Control {
	n := index + 1
	return slider.New(slider.Config{
		Name:     ChildAgeField(n),
		Label:    fmt.Sprintf("How old is child %d?", n),
		Min:      AgeMin,
		Max:      AgeMax,
		Value:    AgeDefault,
		Required: true,
	})
}

// Kind identifies the form for logging and routing.
func (o *Order) Kind() string { return "order" }

// Service returns the descriptor the form was built for.
func (o *Order) Service() *catalog.ServiceDescriptor { return o.service }

// ServiceName returns the display name of the service.
func (o *Order) ServiceName() string { return o.service.Name }

// Title is the page heading for the form.
func (o *Order) Title() string { return o.service.Name + " Request" }

// Token returns the form instance token.
func (o *Order) Token() string { return o.token }

// SetToken restores the instance token of a form rebuilt from a post.
func (o *Order) SetToken(token string) {
	if token = strings.TrimSpace(token); token != "" {
		o.token = token
	}
}

// SetName, SetEmail, SetPhone, SetAddress and SetDetails store base fields.
func (o *Order) SetName(v string)    { o.name = v }
func (o *Order) SetEmail(v string)   { o.email = v }
func (o *Order) SetPhone(v string)   { o.phone = v }
func (o *Order) SetAddress(v string) { o.address = v }
func (o *Order) SetDetails(v string) { o.details = v }

// ContactMethods returns the raw email and phone values.
func (o *Order) ContactMethods() (email, phone string) { return o.email, o.phone }

// NeedsAddress reports whether the service address is required.
func (o *Order) NeedsAddress() bool { return o.service.NeedsAddress() }

// House returns the house type choice, or nil when the service has none.
func (o *Order) House() *Choice { return o.house }

// Windows returns the window count slider, or nil.
func (o *Order) Windows() *slider.Control { return o.windows }

// PetCount returns the pet count slider, or nil.
func (o *Order) PetCount() *slider.Control { return o.petCount }

// KidCount returns the child count slider, or nil.
func (o *Order) KidCount() *slider.Control { return o.kidCount }

// Dates returns the scheduling group.
func (o *Order) Dates() *DateRange { return &o.dates }

// SyncPets resizes the pet roster to the committed pet count. Call it after
// any edit to the count slider.
func (o *Order) SyncPets() {
	if o.pets == nil {
		return
	}
	o.pets.Resize(o.petCount.Value())
}

// SyncKids resizes the child roster to the committed child count.
func (o *Order) SyncKids() {
	if o.kids == nil {
		return
	}
	o.kids.Resize(o.kidCount.Value())
}

// SetPetCount types text into the pet count box, commits it and resizes the
// roster.
func (o *Order) SetPetCount(text string) int {
	if o.petCount == nil {
		return 0
	}
	n := o.petCount.SetNumber(text)
	o.SyncPets()
	return n
}

// SetKidCount types text into the child count box, commits it and resizes the
// roster.
func (o *Order) SetKidCount(text string) int {
	if o.kidCount == nil {
		return 0
	}
	n := o.kidCount.SetNumber(text)
	o.SyncKids()
	return n
}

// Pets returns the number of pet rows.
func (o *Order) Pets() int {
	if o.pets == nil {
		return 0
	}
	return o.pets.Len()
}

// Pet returns the 1-based i-th pet row for editing.
func (o *Order) Pet(i int) (*Choice, bool) {
	if o.pets == nil {
		return nil, false
	}
	var out *Choice
	ok := o.pets.Update(i-1, func(c *Choice) { out = c })
	return out, ok
}

// Kids returns the number of child rows.
func (o *Order) Kids() int {
	if o.kids == nil {
		return 0
	}
	return o.kids.Len()
}

// ChildAge returns the 1-based i-th child age slider.
func (o *Order) ChildAge(i int) (*slider.Control, bool) {
	if o.kids == nil {
		return nil, false
	}
	return o.kids.At(i - 1)
}

// Reset restores every field to its default and issues a new instance token.
func (o *Order) Reset() {
	fresh := NewOrder(o.service)
	*o = *fresh
}

// Validate runs the required-field checks a browser would run before submit.
// The contact-method rule is not part of it; the submitter checks it
// separately so it can report it with its own message.
func (o *Order) Validate() []model.FieldError {
	var errs []model.FieldError
	add := func(field, msg string) {
		errs = append(errs, model.FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(o.name) == "" {
		add(FieldCustomerName, MessageRequired)
	}
	if email := strings.TrimSpace(o.email); email != "" {
		if !validEmail(email) {
			add(FieldCustomerEmail, MessageInvalidEmail)
		}
	}
	if o.NeedsAddress() && strings.TrimSpace(o.address) == "" {
		add(FieldServiceAddress, MessageRequired)
	}

	if o.house != nil {
		validateChoice(*o.house, FieldHouseType, FieldHouseTypeOther, add)
	}
	if o.pets != nil {
		o.pets.Each(func(idx int, pet Choice) {
			validateChoice(pet, PetTypeField(idx+1), PetTypeOtherField(idx+1), add)
		})
	}

	dateField := o.dates.FieldName()
	start, startOK := parseDate(o.dates.Date())
	switch {
	case o.dates.Date() == "":
		add(dateField, MessageRequired)
	case !startOK:
		add(dateField, MessageInvalidDate)
	}
	if o.dates.MultiDay() {
		end, endOK := parseDate(o.dates.End())
		switch {
		case o.dates.End() == "":
			add(FieldEndDate, MessageRequired)
		case !endOK:
			add(FieldEndDate, MessageInvalidDate)
		case startOK && end.Before(start):
			add(FieldEndDate, MessageEndBeforeStart)
		}
	}

	return errs
}

func validateChoice(c Choice, field, otherField string, add func(string, string)) {
	if c.Value() == "" {
		add(field, MessageSelect)
		return
	}
	if c.OtherVisible() && strings.TrimSpace(c.Other()) == "" {
		add(otherField, MessageRequired)
	}
}

// Payload composes the values of every visible field, in render order.
func (o *Order) Payload() url.Values {
	values := url.Values{}
	values.Set(FieldService, o.service.Name)
	values.Set(FieldCustomerName, strings.TrimSpace(o.name))
	values.Set(FieldCustomerEmail, strings.TrimSpace(o.email))
	values.Set(FieldCustomerPhone, strings.TrimSpace(o.phone))
	if o.NeedsAddress() {
		values.Set(FieldServiceAddress, strings.TrimSpace(o.address))
	}

	if o.house != nil {
		values.Set(FieldHouseType, o.house.Value())
		if o.house.OtherVisible() {
			values.Set(FieldHouseTypeOther, strings.TrimSpace(o.house.Other()))
		}
	}
	if o.windows != nil {
		values.Set(FieldWindowCount, o.windows.Range())
	}
	if o.pets != nil {
		values.Set(FieldPetCount, o.petCount.Range())
		o.pets.Each(func(idx int, pet Choice) {
			values.Set(PetTypeField(idx+1), pet.Value())
			if pet.OtherVisible() {
				values.Set(PetTypeOtherField(idx+1), strings.TrimSpace(pet.Other()))
			}
		})
	}
	if o.kids != nil {
		values.Set(FieldKidCount, o.kidCount.Range())
		o.kids.Each(func(_ int, age *slider.Control) {
			values.Set(age.Name(), age.Range())
		})
	}

	if o.dates.MultiDay() {
		values.Set(FieldMultiDay, "on")
	}
	values.Set(o.dates.FieldName(), o.dates.Date())
	if o.dates.MultiDay() {
		values.Set(FieldEndDate, o.dates.End())
	}
	if details := strings.TrimSpace(o.details); details != "" {
		values.Set(FieldDetails, details)
	}
	return values
}
