package rbt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// JSONField is the reserved attribute holding the unmodified payload.
const JSONField = "json"

// List is an ordered sequence built from a JSON array. Mapping elements are
// *Component values; every other element is carried through unchanged.
type List []interface{}

type field struct {
	name  string
	value interface{}
}

// Component is an immutable, attribute-addressable value built from a JSON
// object. Field names are the payload keys with hyphens replaced by
// underscores. The untouched payload stays available through JSON().
type Component struct {
	name    string
	address string
	fields  []field
	index   map[string]int
	raw     map[string]interface{}

	links     map[string]*Resource
	linkNames []string
}

// Name returns the sanitized component name.
func (c *Component) Name() string {
	return c.name
}

// Address returns the address the component was fetched from, if any.
func (c *Component) Address() string {
	return c.address
}

// Fields returns the attribute names in build order: extra fields first,
// then payload fields, each sorted by source key.
func (c *Component) Fields() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.name
	}

	return names
}

// Has reports whether name is a data field or a resolved link.
func (c *Component) Has(name string) bool {
	_, err := c.Get(name)

	return err == nil
}

// Get returns the value of an attribute. Data fields shadow links of the
// same name; use Link to reach a shadowed link.
func (c *Component) Get(name string) (interface{}, error) {
	if name == JSONField {
		return c.JSON(), nil
	}

	if i, ok := c.index[name]; ok {
		return c.fields[i].value, nil
	}

	if resource, ok := c.links[name]; ok {
		return resource, nil
	}

	return nil, &FieldError{Component: c.name, Name: name}
}

// Lookup walks a path of attribute names. A list is indexed by a decimal
// segment.
func (c *Component) Lookup(path ...string) (interface{}, error) {
	var current interface{} = c

	for _, segment := range path {
		switch value := current.(type) {
		case *Component:
			next, err := value.Get(segment)
			if err != nil {
				return nil, err
			}

			current = next
		case List:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(value) {
				return nil, &FieldError{Component: c.name, Name: segment}
			}

			current = value[i]
		default:
			return nil, &FieldError{Component: c.name, Name: segment}
		}
	}

	return current, nil
}

// GetString returns a string field.
func (c *Component) GetString(name string) (string, error) {
	value, err := c.Get(name)
	if err != nil {
		return "", err
	}

	s, ok := value.(string)
	if !ok {
		return "", fieldTypeError(c.name, name, "string", value)
	}

	return s, nil
}

// GetInt64 returns an integral number field.
func (c *Component) GetInt64(name string) (int64, error) {
	value, err := c.Get(name)
	if err != nil {
		return 0, err
	}

	switch n := value.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fieldTypeError(c.name, name, "integer", value)
		}

		return i, nil
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fieldTypeError(c.name, name, "integer", value)
	}
}

// GetFloat64 returns a number field.
func (c *Component) GetFloat64(name string) (float64, error) {
	value, err := c.Get(name)
	if err != nil {
		return 0, err
	}

	switch n := value.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fieldTypeError(c.name, name, "number", value)
		}

		return f, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fieldTypeError(c.name, name, "number", value)
	}
}

// GetBool returns a boolean field.
func (c *Component) GetBool(name string) (bool, error) {
	value, err := c.Get(name)
	if err != nil {
		return false, err
	}

	b, ok := value.(bool)
	if !ok {
		return false, fieldTypeError(c.name, name, "bool", value)
	}

	return b, nil
}

// GetComponent returns a nested component field.
func (c *Component) GetComponent(name string) (*Component, error) {
	value, err := c.Get(name)
	if err != nil {
		return nil, err
	}

	sub, ok := value.(*Component)
	if !ok {
		return nil, fieldTypeError(c.name, name, "object", value)
	}

	return sub, nil
}

// GetList returns a list field.
func (c *Component) GetList(name string) (List, error) {
	value, err := c.Get(name)
	if err != nil {
		return nil, err
	}

	list, ok := value.(List)
	if !ok {
		return nil, fieldTypeError(c.name, name, "list", value)
	}

	return list, nil
}

// Link returns the resource bound to a link of this component.
func (c *Component) Link(name string) (*Resource, error) {
	if resource, ok := c.links[Sanitize(name)]; ok {
		return resource, nil
	}

	return nil, &MissingLinkError{Address: c.address, Name: name}
}

// Links returns the resolved link names, sorted.
func (c *Component) Links() []string {
	return append([]string(nil), c.linkNames...)
}

// Follow invokes the named link.
func (c *Component) Follow(ctx context.Context, name string, params Params) (*Component, error) {
	resource, err := c.Link(name)
	if err != nil {
		return nil, err
	}

	return resource.Call(ctx, params)
}

// JSON returns a copy of the payload the component was built from.
func (c *Component) JSON() map[string]interface{} {
	copied, _ := cloneValue(c.raw).(map[string]interface{})

	return copied
}

// MarshalJSON encodes the original payload.
func (c *Component) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(c.raw)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", c.name, err)
	}

	return data, nil
}

// MarshalYAML encodes the original payload.
func (c *Component) MarshalYAML() (interface{}, error) {
	return c.raw, nil
}

// withAddress returns a shallow copy bound to address.
func (c *Component) withAddress(address string) *Component {
	copied := c.clone()
	copied.address = address

	return copied
}

// withField returns a copy whose field name holds value.
func (c *Component) withField(name string, value interface{}) *Component {
	copied := c.clone()
	copied.fields = append([]field(nil), c.fields...)
	copied.fields[c.index[name]].value = value

	return copied
}

func (c *Component) clone() *Component {
	copied := *c

	return &copied
}

func fieldTypeError(component, name, want string, got interface{}) error {
	return fmt.Errorf("%w: %s.%s is %T, want %s", ErrFieldType, component, name, got, want)
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		copied := make(map[string]interface{}, len(v))
		for key, item := range v {
			copied[key] = cloneValue(item)
		}

		return copied
	case []interface{}:
		copied := make([]interface{}, len(v))
		for i, item := range v {
			copied[i] = cloneValue(item)
		}

		return copied
	default:
		return v
	}
}
