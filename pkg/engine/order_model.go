package engine

import (
	"fmt"
	"net/url"

	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/slider"
	"github.com/goliatone/go-orderform/pkg/visibility"
)

// Group field names. They only structure the model; nothing is submitted
// under them.
const (
	GroupHouse       = "houseTypeGroup"
	GroupWindows     = "windowGroup"
	GroupPets        = "petGroup"
	GroupBabysitting = "babysittingGroup"
	GroupDates       = "dateGroup"
	GroupPetRows     = "petTypes"
	GroupChildAges   = "childAges"
)

var _ Form = (*Order)(nil)

// SuccessMessage is the overlay text shown after the backend accepted the
// request.
func (o *Order) SuccessMessage() string {
	return fmt.Sprintf("Thanks! Your %s request was sent. I'll be in touch soon.", o.service.Name)
}

// Apply restores form state from posted values. Counts are applied before the
// rows they size so surviving rows keep their posted values.
func (o *Order) Apply(values url.Values) {
	if values == nil {
		return
	}
	o.SetToken(values.Get(FieldToken))
	o.name = values.Get(FieldCustomerName)
	o.email = values.Get(FieldCustomerEmail)
	o.phone = values.Get(FieldCustomerPhone)
	if o.NeedsAddress() {
		o.address = values.Get(FieldServiceAddress)
	}
	o.details = values.Get(FieldDetails)

	if o.house != nil {
		o.house.Select(values.Get(FieldHouseType))
		o.house.SetOther(values.Get(FieldHouseTypeOther))
	}
	ApplySlider(o.windows, values)

	if o.pets != nil {
		ApplySlider(o.petCount, values)
		o.SyncPets()
		for i := 1; i <= o.pets.Len(); i++ {
			o.pets.Update(i-1, func(pet *Choice) {
				pet.Select(values.Get(PetTypeField(i)))
				pet.SetOther(values.Get(PetTypeOtherField(i)))
			})
		}
	}

	if o.kids != nil {
		ApplySlider(o.kidCount, values)
		o.SyncKids()
		o.kids.Each(func(_ int, age *slider.Control) {
			ApplySlider(age, values)
		})
	}

	o.dates.SetMultiDay(truthy(values.Get(FieldMultiDay)))
	primary, fallback := FieldPreferredDate, FieldStartDate
	if o.dates.MultiDay() {
		primary, fallback = FieldStartDate, FieldPreferredDate
	}
	if date, ok := lookup(values, primary); ok {
		o.dates.SetDate(date)
	} else {
		o.dates.SetDate(values.Get(fallback))
	}
	o.dates.SetEnd(values.Get(FieldEndDate))
}

// Set edits a single field by its current name. It returns false for names
// the form does not carry.
func (o *Order) Set(name, value string) bool {
	switch name {
	case FieldCustomerName:
		o.name = value
	case FieldCustomerEmail:
		o.email = value
	case FieldCustomerPhone:
		o.phone = value
	case FieldServiceAddress:
		if !o.NeedsAddress() {
			return false
		}
		o.address = value
	case FieldDetails:
		o.details = value
	case FieldHouseType, FieldHouseTypeOther:
		if o.house == nil {
			return false
		}
		if name == FieldHouseType {
			o.house.Select(value)
		} else {
			o.house.SetOther(value)
		}
	case FieldWindowCount:
		if o.windows == nil {
			return false
		}
		o.windows.SetNumber(value)
	case FieldPetCount:
		if o.petCount == nil {
			return false
		}
		o.SetPetCount(value)
	case FieldKidCount:
		if o.kidCount == nil {
			return false
		}
		o.SetKidCount(value)
	case FieldMultiDay:
		if !o.dates.Supported() {
			return false
		}
		o.dates.SetMultiDay(truthy(value))
	case FieldPreferredDate, FieldStartDate:
		if name != o.dates.FieldName() {
			return false
		}
		o.dates.SetDate(value)
	case FieldEndDate:
		if !o.dates.MultiDay() {
			return false
		}
		o.dates.SetEnd(value)
	default:
		return o.setRow(name, value)
	}
	return true
}

func (o *Order) setRow(name, value string) bool {
	for i := 1; i <= o.Pets(); i++ {
		switch name {
		case PetTypeField(i):
			pet, _ := o.Pet(i)
			pet.Select(value)
			return true
		case PetTypeOtherField(i):
			pet, _ := o.Pet(i)
			pet.SetOther(value)
			return true
		}
	}
	for i := 1; i <= o.Kids(); i++ {
		if name == ChildAgeField(i) {
			age, _ := o.ChildAge(i)
			age.SetNumber(value)
			return true
		}
	}
	return false
}

// Values exposes the current field values to visibility rules.
func (o *Order) Values() visibility.Values {
	return visibility.Map(flatten(o.Payload()))
}

// Model projects the current state into the form model renderers consume.
// Fields follow the fixed order: base fields, house type, windows, pets,
// babysitting, dates, details.
func (o *Order) Model() model.FormModel {
	fields := []model.Field{
		hiddenField(FieldService, o.service.Name),
		hiddenField(FieldToken, o.token),
		{
			Name: FieldCustomerName, Type: model.FieldTypeString, Widget: model.WidgetInput,
			Required: true, Label: "Full Name", Value: o.name,
		},
		{
			Name: FieldCustomerEmail, Type: model.FieldTypeString, Widget: model.WidgetEmail,
			Label: "Email", Value: o.email,
		},
		{
			Name: FieldCustomerPhone, Type: model.FieldTypeString, Widget: model.WidgetTel,
			Label: "Phone", Value: o.phone,
		},
	}
	if o.NeedsAddress() {
		fields = append(fields, model.Field{
			Name: FieldServiceAddress, Type: model.FieldTypeString, Widget: model.WidgetInput,
			Required: true, Label: "Service Address", Value: o.address,
		})
	}

	if o.house != nil {
		fields = append(fields, groupField(GroupHouse, "Property Type", "What type of house is it?",
			ChoiceFields(*o.house, FieldHouseType, "House Type", "Select house type",
				FieldHouseTypeOther, "Please enter your house type")...))
	}
	if o.windows != nil {
		fields = append(fields, groupField(GroupWindows, "Window Details", "How many windows?",
			SliderField(o.windows)))
	}
	if o.pets != nil {
		var rows []model.Field
		o.pets.Each(func(idx int, pet Choice) {
			n := idx + 1
			rows = append(rows, ChoiceFields(pet, PetTypeField(n), fmt.Sprintf("Pet %d Type", n),
				"Select pet type", PetTypeOtherField(n), "Please enter your pet type")...)
		})
		fields = append(fields, groupField(GroupPets, "Pet Details",
			"Select number of pets and the type for each one.",
			SliderField(o.petCount),
			rosterField(GroupPetRows, rows)))
	}
	if o.kids != nil {
		var rows []model.Field
		o.kids.Each(func(_ int, age *slider.Control) {
			rows = append(rows, SliderField(age))
		})
		fields = append(fields, groupField(GroupBabysitting, "Babysitting Details",
			"Set child count, then provide ages for each child.",
			SliderField(o.kidCount),
			rosterField(GroupChildAges, rows)))
	}

	fields = append(fields, o.dateGroup())
	fields = append(fields, model.Field{
		Name: FieldDetails, Type: model.FieldTypeString, Widget: model.WidgetTextarea,
		Label: "Additional Details", Placeholder: "Anything else I should know?", Value: o.details,
	})
	resolveVisibility(fields, o.Values())

	return model.FormModel{
		OperationID: "submitOrder",
		Method:      "POST",
		Summary:     o.Title(),
		Description: o.service.Description,
		Fields:      fields,
		Metadata: map[string]string{
			model.MetadataServiceKey:  o.service.Key,
			model.MetadataServiceName: o.service.Name,
			model.MetadataFormKind:    o.Kind(),
		},
	}
}

func (o *Order) dateGroup() model.Field {
	var nested []model.Field
	if o.dates.Supported() {
		value := "false"
		if o.dates.MultiDay() {
			value = "true"
		}
		nested = append(nested, model.Field{
			Name: FieldMultiDay, Type: model.FieldTypeBoolean, Widget: model.WidgetToggle,
			Label: "Multiple days", Value: value,
		})
	}
	nested = append(nested, model.Field{
		Name: o.dates.FieldName(), Type: model.FieldTypeString, Widget: model.WidgetDate,
		Required: true, Label: o.dates.Label(), Value: o.dates.Date(),
	})
	if o.dates.Supported() {
		end := model.Field{
			Name: FieldEndDate, Type: model.FieldTypeString, Widget: model.WidgetDate,
			Required: true, Label: "End Date", Value: o.dates.End(),
			VisibleWhen: visibility.IsSet(FieldMultiDay),
		}
		if start := o.dates.Date(); start != "" {
			end.Validations = []model.ValidationRule{{
				Kind:   model.ValidationRuleMinDate,
				Params: map[string]string{"value": start},
			}}
		}
		nested = append(nested, end)
	}
	return groupField(GroupDates, "Scheduling", "", nested...)
}

func hiddenField(name, value string) model.Field {
	return model.Field{
		Name:   name,
		Type:   model.FieldTypeString,
		Widget: model.WidgetHidden,
		Value:  value,
	}
}

func groupField(name, label, description string, nested ...model.Field) model.Field {
	return model.Field{
		Name:        name,
		Type:        model.FieldTypeObject,
		Widget:      model.WidgetGroup,
		Label:       label,
		Description: description,
		Nested:      nested,
		Metadata:    map[string]string{model.MetadataGroup: name},
	}
}

func rosterField(name string, rows []model.Field) model.Field {
	return model.Field{
		Name:   name,
		Type:   model.FieldTypeObject,
		Widget: model.WidgetRoster,
		Nested: rows,
	}
}

func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for name, raw := range values {
		if len(raw) > 0 {
			out[name] = raw[0]
		}
	}
	return out
}
