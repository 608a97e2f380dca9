package form

import "strings"

// Kind classifies a field for serialization.
type Kind string

const (
	KindText     Kind = "text"
	KindCheckbox Kind = "checkbox"
	KindPassword Kind = "password"
	KindOther    Kind = "other"
)

// KindOf maps an HTML input type to a Kind.
func KindOf(inputType string) Kind {
	switch strings.ToLower(strings.TrimSpace(inputType)) {
	case "", "text", "search", "email", "tel", "url":
		return KindText
	case "checkbox":
		return KindCheckbox
	case "password":
		return KindPassword
	default:
		return KindOther
	}
}

// Field is a typed form field descriptor.
type Field struct {
	Name    string
	ID      string
	Kind    Kind
	Type    string // original HTML type (select, textarea, hidden, number...)
	Value   string
	Checked bool
	Options []string // option values for selects, in document order

	defaultValue   string
	defaultChecked bool
}

// Sensitive reports whether the field must stay out of the query string.
func (f Field) Sensitive() bool {
	return f.Kind == KindPassword || f.Name == "password"
}

// IsCheckbox reports whether the field is a checkbox.
func (f Field) IsCheckbox() bool {
	return f.Kind == KindCheckbox
}

// Snapshot is an immutable copy of a form's state taken at submission time.
type Snapshot struct {
	ID     string
	Action string
	Fields []Field
}

// ByID returns the first field with the given element ID.
func (s Snapshot) ByID(id string) (Field, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// ByName returns the first field with the given name.
func (s Snapshot) ByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns the value of the field with the given element ID, falling
// back to a name match. Missing fields read as empty.
func (s Snapshot) Value(id string) string {
	if f, ok := s.ByID(id); ok {
		return f.Value
	}
	if f, ok := s.ByName(id); ok {
		return f.Value
	}
	return ""
}

// Checked returns the checked state of the field with the given element ID.
func (s Snapshot) Checked(id string) bool {
	if f, ok := s.ByID(id); ok {
		return f.Checked
	}
	return false
}
