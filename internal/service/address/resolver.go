package address

import (
	"reflect"
	"strings"

	"pizzeria-storefront/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Draft fields accepted by Resolver.SetField.
const (
	FieldStreet  = "street"
	FieldCity    = "city"
	FieldState   = "state"
	FieldZipCode = "zipCode"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Resolver tracks the delivery address chosen for one checkout. It holds at most one
// selection, either a saved address or a complete ad-hoc entry.
type Resolver struct {
	saved    []domain.Address
	selected *domain.AddressSelection
	adHoc    bool
	draft    domain.AddressSelection
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Load stores the saved addresses, expected in default-first, newest-first order.
// With nothing selected it picks the default address, else the first one. An empty
// list switches to ad-hoc entry.
func (r *Resolver) Load(addresses []domain.Address) {
	r.saved = append([]domain.Address(nil), addresses...)
	if len(r.saved) == 0 {
		if r.selected == nil && !r.adHoc {
			r.StartNew()
		}
		return
	}
	if r.selected == nil && !r.adHoc {
		r.selectDefault()
	}
}

// SelectSaved makes a saved address the selection and discards any ad-hoc draft.
func (r *Resolver) SelectSaved(a domain.Address) {
	r.adHoc = false
	r.draft = domain.AddressSelection{}
	sel := domain.SelectionFromAddress(a)
	r.selected = &sel
}

// StartNew switches to ad-hoc entry with an empty draft and no selection.
func (r *Resolver) StartNew() {
	r.adHoc = true
	r.selected = nil
	r.draft = domain.AddressSelection{SaveToProfile: true}
}

// SetField updates one draft field. The selection is emitted only once all four
// fields are filled.
func (r *Resolver) SetField(field, value string) {
	if !r.adHoc {
		r.StartNew()
	}
	value = strings.TrimSpace(value)
	switch field {
	case FieldStreet:
		r.draft.Street = value
	case FieldCity:
		r.draft.City = value
	case FieldState:
		r.draft.State = value
	case FieldZipCode:
		r.draft.ZipCode = value
	default:
		return
	}
	r.emitDraft()
}

// EnterNew fills the draft from fields in one step.
func (r *Resolver) EnterNew(fields domain.AddressSelection) {
	if !r.adHoc {
		r.StartNew()
	}
	r.draft.Street = strings.TrimSpace(fields.Street)
	r.draft.City = strings.TrimSpace(fields.City)
	r.draft.State = strings.TrimSpace(fields.State)
	r.draft.ZipCode = strings.TrimSpace(fields.ZipCode)
	r.emitDraft()
}

// SetSaveToProfile only records the flag on the draft and on an emitted ad-hoc
// selection. Nothing is persisted here.
func (r *Resolver) SetSaveToProfile(save bool) {
	if !r.adHoc {
		return
	}
	r.draft.SaveToProfile = save
	if r.selected != nil {
		r.selected.SaveToProfile = save
	}
}

// CancelNew leaves ad-hoc entry and falls back to the default saved address.
func (r *Resolver) CancelNew() {
	r.adHoc = false
	r.draft = domain.AddressSelection{}
	r.selected = nil
	r.selectDefault()
}

// Selected returns a copy of the current selection, or nil.
func (r *Resolver) Selected() *domain.AddressSelection {
	if r.selected == nil {
		return nil
	}
	sel := *r.selected
	return &sel
}

func (r *Resolver) AdHoc() bool { return r.adHoc }

func (r *Resolver) Find(id string) (domain.Address, bool) {
	for _, a := range r.saved {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Address{}, false
}

func (r *Resolver) selectDefault() {
	if len(r.saved) == 0 {
		return
	}
	chosen := r.saved[0]
	for _, a := range r.saved {
		if a.IsDefault {
			chosen = a
			break
		}
	}
	r.SelectSaved(chosen)
}

func (r *Resolver) emitDraft() {
	if !r.draft.Complete() {
		r.selected = nil
		return
	}
	sel := r.draft
	sel.AddressID = ""
	r.selected = &sel
}
