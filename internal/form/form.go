// Package form models HTML forms as typed field descriptors.
package form

import (
	"fmt"
	"strconv"
	"sync"
)

// Form is a named collection of fields submitted together.
// Debounced lookups write into forms from timer goroutines, so all access
// goes through the mutex.
type Form struct {
	mu sync.RWMutex

	ID     string
	Name   string
	Action string
	Method string
	fields []Field
}

// New creates a form with the given fields. Field values become the defaults
// restored by Reset.
func New(id, action string, fields ...Field) *Form {
	f := &Form{
		ID:     id,
		Name:   id,
		Action: action,
		Method: "GET",
	}
	for _, field := range fields {
		f.add(field)
	}
	return f
}

func (f *Form) add(field Field) {
	if field.Kind == "" {
		field.Kind = KindOf(field.Type)
	}
	field.defaultValue = field.Value
	field.defaultChecked = field.Checked
	f.fields = append(f.fields, field)
}

// Snapshot copies the current field state.
func (f *Form) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	fields := make([]Field, len(f.fields))
	copy(fields, f.fields)
	return Snapshot{ID: f.ID, Action: f.Action, Fields: fields}
}

// Len returns the number of fields.
func (f *Form) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.fields)
}

// Field returns a copy of the field with the given element ID or name.
func (f *Form) Field(key string) (Field, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if i := f.index(key); i >= 0 {
		return f.fields[i], true
	}
	return Field{}, false
}

// Value returns the value of the field with the given element ID or name.
func (f *Form) Value(key string) string {
	field, _ := f.Field(key)
	return field.Value
}

// index finds a field by element ID first, then by name.
func (f *Form) index(key string) int {
	for i := range f.fields {
		if f.fields[i].ID == key {
			return i
		}
	}
	for i := range f.fields {
		if f.fields[i].Name == key {
			return i
		}
	}
	return -1
}

// SetValue sets the value of the field with the given element ID or name.
func (f *Form) SetValue(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(key)
	if i < 0 {
		return fmt.Errorf("form %s: no field %q", f.ID, key)
	}
	f.fields[i].Value = value
	return nil
}

// SetChecked sets the checked state of the field with the given element ID
// or name.
func (f *Form) SetChecked(key string, checked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(key)
	if i < 0 {
		return fmt.Errorf("form %s: no field %q", f.ID, key)
	}
	f.fields[i].Checked = checked
	return nil
}

// Reset restores every field to the state parsed from markup.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.fields {
		f.fields[i].Value = f.fields[i].defaultValue
		f.fields[i].Checked = f.fields[i].defaultChecked
	}
}

// Populate copies entries of data into fields whose name matches a key.
// A field named "active" with at least three options is mapped from the
// record's truthiness: option 1 when active, option 2 otherwise.
func (f *Form) Populate(data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.fields {
		field := &f.fields[i]
		v, ok := data[field.Name]
		if !ok {
			continue
		}
		if field.Name == "active" && len(field.Options) >= 3 {
			if truthy(v) {
				field.Value = field.Options[1]
			} else {
				field.Value = field.Options[2]
			}
			continue
		}
		if b, isBool := v.(bool); isBool && field.IsCheckbox() {
			field.Checked = b
			continue
		}
		field.Value = stringify(v)
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}
