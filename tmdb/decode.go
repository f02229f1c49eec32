package tmdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// keyed is implemented by responses that name the keys a well-formed
// payload must contain.
type keyed interface {
	requiredKeys() []string
}

// itemKeyed is implemented by list envelopes whose elements (under
// "results") must each carry the returned keys.
type itemKeyed interface {
	itemKeys() []string
}

// decodeStrict unmarshals data into out and rejects payloads that are
// missing a required key or disagree with out's types. A failure never
// leaves a partially filled result behind for the caller.
func decodeStrict(path string, data []byte, out any) error {
	if k, ok := out.(keyed); ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return decodeError(path, err)
		}
		if err := checkKeys(fields, k.requiredKeys()); err != nil {
			return decodeError(path, err)
		}

		if ik, ok := out.(itemKeyed); ok {
			var items []map[string]json.RawMessage
			if err := json.Unmarshal(fields["results"], &items); err != nil {
				return decodeError(path, err)
			}
			for i, item := range items {
				if err := checkKeys(item, ik.itemKeys()); err != nil {
					return decodeError(path, fmt.Errorf("results[%d]: %w", i, err))
				}
			}
		}
	}

	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("decode target for %s must be a non-nil pointer, got %T", path, out)
	}
	fresh := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return decodeError(path, err)
	}
	target.Elem().Set(fresh.Elem())
	return nil
}

var jsonNull = []byte("null")

func checkKeys(fields map[string]json.RawMessage, keys []string) error {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			return fmt.Errorf("missing required key %q", key)
		}
	}
	return nil
}
