package overlay

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var requiredFieldsCache sync.Map // reflect.Type -> []string

// requiredFields returns the JSON keys of T that are not marked omitempty.
// A stored record lacking one of them was written by an older schema.
func requiredFields[T any]() []string {
	typ := reflect.TypeFor[T]()
	if cached, ok := requiredFieldsCache.Load(typ); ok {
		return cached.([]string)
	}

	var fields []string
	if typ.Kind() == reflect.Struct {
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if !f.IsExported() {
				continue
			}
			name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || strings.Contains(opts, "omitempty") {
				continue
			}
			if name == "" {
				name = f.Name
			}
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)

	requiredFieldsCache.Store(typ, fields)
	return fields
}

// aliased is implemented by records that still read older key names.
type aliased interface {
	FieldAliases() map[string]string
}

func fieldAliases[T any]() map[string]string {
	var zero T
	if a, ok := any(zero).(aliased); ok {
		return a.FieldAliases()
	}
	return nil
}

// missingFields reports which required keys are absent from a raw record.
// A key counts as present when its older alias is.
func missingFields(raw json.RawMessage, required []string, aliases map[string]string) []string {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return nil
	}
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; ok {
			continue
		}
		if alias, ok := aliases[name]; ok {
			if _, ok := present[alias]; ok {
				continue
			}
		}
		missing = append(missing, name)
	}
	return missing
}
