package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Object decodes b as a JSON object, keeping member values raw so each can
// be decoded with its own location.
func Object(b []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return nil, Errorf(ErrInvalidField, "", "input should be an object")
	}
	return raw, nil
}

// Field decodes raw[name] into dst. A missing member is an error only when
// required; the return value reports whether the member was present.
func Field(raw map[string]json.RawMessage, name string, dst any, required bool) (bool, error) {
	v, ok := raw[name]
	if !ok {
		if required {
			return false, Errorf(ErrInvalidField, name, "field required")
		}
		return false, nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return true, At(name, err)
	}
	return true, nil
}

// Null requires raw[name] to be present and null.
func Null(raw map[string]json.RawMessage, name string) error {
	v, ok := raw[name]
	if !ok {
		return Errorf(ErrInvalidField, name, "field required")
	}
	if !IsNull(v) {
		return Errorf(ErrInvalidField, name, "input should be None")
	}
	return nil
}

// IsNull reports whether v is the JSON literal null.
func IsNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// DecodeStrict is Decode for records that forbid extra members. Unknown
// members of dst and of the plain structs nested in it are rejected.
func DecodeStrict(b []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		if unq, uerr := strconv.Unquote(name); uerr == nil {
			name = unq
		}
		return Errorf(ErrInvalidField, name, "extra inputs are not permitted")
	}
	return Decode(b, dst)
}

// Decode unmarshals b into dst. Type mismatches are reported at their JSON
// path; failures raised by nested unmarshalers keep their location and kind.
func Decode(b []byte, dst any) error {
	err := json.Unmarshal(b, dst)
	if err == nil {
		return nil
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return Errorf(ErrInvalidField, te.Field, "input should be %s, got JSON %s", te.Type, te.Value)
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return Errorf(ErrInvalidField, "", "invalid JSON at offset %d: %v", se.Offset, se)
	}
	return At("", err)
}
