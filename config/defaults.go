package config

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// overrides reports whether an override value may replace a default.
func overrides(v interface{}) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map:
		return false
	case reflect.Array, reflect.Slice:
		// only override with a list if it has entries
		return reflect.ValueOf(v).Len() > 0
	case reflect.Int, reflect.Bool, reflect.String:
		// "", 0 and false do override; config fields must use omitempty
		return true
	}
	return !reflect.ValueOf(v).IsZero()
}

func isMap(v interface{}) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Map
}

func mergeOverrides(defaults map[string]interface{}, values map[string]interface{}) {
	for key, val := range values {
		existing, ok := defaults[key]
		if !ok {
			defaults[key] = val
			continue
		}
		if isMap(existing) && isMap(val) {
			nested, ok := existing.(map[string]interface{})
			if !ok {
				panic(fmt.Sprintf("unknown map: %T", existing))
			}
			mergeOverrides(nested, val.(map[string]interface{}))
			continue
		}
		if overrides(val) {
			defaults[key] = val
		}
	}
}

func toMap(v interface{}) (map[string]interface{}, error) {
	bz, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	return out, yaml.Unmarshal(bz, &out)
}

// ApplyDefaults merges overrideCfg over defaultCfg and decodes the result
// into newCfg.
func ApplyDefaults(defaultCfg interface{}, overrideCfg interface{}, newCfg interface{}) error {
	defaults, err := toMap(defaultCfg)
	if err != nil {
		return err
	}
	values, err := toMap(overrideCfg)
	if err != nil {
		return err
	}
	mergeOverrides(defaults, values)

	bz, err := yaml.Marshal(defaults)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bz, newCfg)
}
