// Package envelope decodes the backend's JSON response envelope.
package envelope

import (
	"encoding/json"
	"strconv"

	"github.com/ysmood/gson"

	"github.com/PentesterFlow/ladderadmin/internal/errors"
)

// ResultSuccess is the only result value treated as success.
const ResultSuccess = "success"

// Envelope is a decoded response: {result, reason?, ...command fields}.
type Envelope struct {
	raw  []byte
	data map[string]interface{}
	j    gson.JSON
}

// Decode parses a response body. The body must be a JSON object.
func Decode(body []byte) (*Envelope, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Envelope{raw: body, data: data, j: gson.New(data)}, nil
}

// Result returns the result field.
func (e *Envelope) Result() string {
	return e.Str("result")
}

// Reason returns the failure reason, if any.
func (e *Envelope) Reason() string {
	return e.Str("reason")
}

// Success reports whether result == "success".
func (e *Envelope) Success() bool {
	return e.Result() == ResultSuccess
}

// Err returns an application error for a failed envelope, nil otherwise.
func (e *Envelope) Err(command, url string) error {
	if e.Success() {
		return nil
	}
	reason := e.Reason()
	if reason == "" {
		reason = e.Result()
	}
	return errors.NewApplicationError(command, url, reason)
}

// Str returns the value at a dotted path ("season_id",
// "entries.0.player_id") as a string. Numbers are formatted without a
// trailing fraction; missing values read as "".
func (e *Envelope) Str(path string) string {
	if !e.j.Has(path) {
		return ""
	}
	switch v := e.j.Get(path).Val().(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return e.j.Get(path).JSON("", "")
	}
}

// Entries returns the entries array as generic records.
func (e *Envelope) Entries() []map[string]interface{} {
	list, _ := e.data["entries"].([]interface{})
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of entries.
func (e *Envelope) Count() int {
	if !e.j.Has("entries") {
		return 0
	}
	return len(e.j.Get("entries").Arr())
}

// DecodeEntries unmarshals the entries array into v.
func (e *Envelope) DecodeEntries(v interface{}) error {
	raw, ok := e.data["entries"]
	if !ok {
		raw = []interface{}{}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Bytes returns the body as received.
func (e *Envelope) Bytes() []byte {
	return e.raw
}
