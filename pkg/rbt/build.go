package rbt

import (
	"sort"
	"strings"
)

// Sanitize turns a payload key into an attribute name.
func Sanitize(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// Build converts a JSON object into a Component named name. Fields of extra
// are attached at this level only, ahead of the payload's own fields. Nested
// objects become sub-components named after their key and arrays become
// Lists.
//
// Keys that sanitize to the same attribute name are handled by the
// configured CollisionPolicy.
func Build(name string, payload, extra map[string]interface{}, opts ...Option) (*Component, error) {
	o := newOptions(opts)

	return build(name, payload, extra, o.collision)
}

func build(name string, payload, extra map[string]interface{}, policy CollisionPolicy) (*Component, error) {
	c := &Component{
		name:  Sanitize(name),
		index: make(map[string]int, len(extra)+len(payload)),
		raw:   make(map[string]interface{}, len(extra)+len(payload)),
	}

	sources := make(map[string][]string)

	add := func(key string, value interface{}) error {
		attr := Sanitize(key)
		sources[attr] = append(sources[attr], key)

		if attr == JSONField {
			return &CollisionError{Component: c.name, Field: attr, Keys: []string{key}}
		}

		built, err := buildValue(key, value, policy)
		if err != nil {
			return err
		}

		if i, exists := c.index[attr]; exists {
			if policy == CollisionReject {
				return &CollisionError{Component: c.name, Field: attr, Keys: sources[attr]}
			}

			c.fields[i].value = built
		} else {
			c.index[attr] = len(c.fields)
			c.fields = append(c.fields, field{name: attr, value: built})
		}

		c.raw[key] = cloneValue(value)

		return nil
	}

	for _, key := range sortedKeys(extra) {
		err := add(key, extra[key])
		if err != nil {
			return nil, err
		}
	}

	for _, key := range sortedKeys(payload) {
		err := add(key, payload[key])
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func buildValue(key string, value interface{}, policy CollisionPolicy) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		return build(key, v, nil, policy)
	case []interface{}:
		list := make(List, len(v))

		for i, element := range v {
			object, ok := element.(map[string]interface{})
			if !ok {
				list[i] = element

				continue
			}

			sub, err := build(key, object, nil, policy)
			if err != nil {
				return nil, err
			}

			list[i] = sub
		}

		return list, nil
	default:
		return v, nil
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
