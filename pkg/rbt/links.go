package rbt

import "sort"

// Reserved link vocabulary.
const (
	LinksField  = "links"
	HrefField   = "href"
	MethodField = "method"
	SelfLink    = "self"
)

// ResolveLinks binds every entry of the component's links field to a
// Resource sharing session. A link named "self" keeps the component's own
// resource name; every other link is named after itself.
//
// Elements of a list are named after the list's key, so the self link of an
// entry in "review_requests" is a "review_requests" resource. Following it
// expects the list media type unless the ContentTypes registry maps that
// name to the single item type.
//
// When the component has no links field, nested components are searched
// according to the LinkSearch option. A component without links anywhere is
// returned unchanged. The input component is never modified.
func ResolveLinks(c *Component, session Session, opts ...Option) (*Component, error) {
	return resolveLinks(c, session, newOptions(opts))
}

func resolveLinks(c *Component, session Session, o *options) (*Component, error) {
	resolved := c

	if _, ok := c.index[LinksField]; ok {
		var err error

		resolved, err = bindLinks(c, session, o)
		if err != nil {
			return nil, err
		}

		if o.linkSearch == LinkSearchFirst {
			return resolved, nil
		}
	}

	for _, f := range c.fields {
		if f.name == LinksField {
			continue
		}

		value, nested, err := resolveNested(c, f.value, session, o)
		if err != nil {
			return nil, err
		}

		if !nested {
			continue
		}

		resolved = resolved.withField(f.name, value)

		if o.linkSearch == LinkSearchFirst {
			break
		}
	}

	return resolved, nil
}

// resolveNested descends into a field value. nested is false for scalars and
// for lists holding no components.
func resolveNested(parent *Component, value interface{}, session Session, o *options) (interface{}, bool, error) {
	switch v := value.(type) {
	case *Component:
		sub, err := resolveLinks(v.withAddress(parent.address), session, o)
		if err != nil {
			return nil, false, err
		}

		return sub, true, nil
	case List:
		nested := false
		list := make(List, len(v))

		for i, element := range v {
			sub, ok := element.(*Component)
			if !ok {
				list[i] = element

				continue
			}

			nested = true

			resolvedSub, err := resolveLinks(sub.withAddress(parent.address), session, o)
			if err != nil {
				return nil, false, err
			}

			list[i] = resolvedSub
		}

		if !nested {
			return value, false, nil
		}

		return list, true, nil
	default:
		return value, false, nil
	}
}

func bindLinks(c *Component, session Session, o *options) (*Component, error) {
	descriptors, ok := c.fields[c.index[LinksField]].value.(*Component)
	if !ok {
		return nil, &LinkError{Address: c.address, Name: LinksField}
	}

	resolved := c.clone()
	resolved.links = make(map[string]*Resource, len(descriptors.fields))
	resolved.linkNames = make([]string, 0, len(descriptors.fields))

	for _, f := range descriptors.fields {
		link, err := linkDescriptor(c.address, f.name, f.value)
		if err != nil {
			return nil, err
		}

		resourceName := f.name
		if f.name == SelfLink {
			resourceName = c.name
		}

		resource, err := newResource(session, resourceName, link.Href, link.Method, o)
		if err != nil {
			return nil, err
		}

		resolved.links[f.name] = resource
		resolved.linkNames = append(resolved.linkNames, f.name)
	}

	sort.Strings(resolved.linkNames)

	return resolved, nil
}

func linkDescriptor(address, name string, value interface{}) (Link, error) {
	descriptor, ok := value.(*Component)
	if !ok {
		return Link{}, &LinkError{Address: address, Name: name}
	}

	href, err := descriptor.GetString(HrefField)
	if err != nil || href == "" {
		return Link{}, &LinkError{Address: address, Name: name}
	}

	method, err := descriptor.GetString(MethodField)
	if err != nil || method == "" {
		return Link{}, &LinkError{Address: address, Name: name}
	}

	return Link{Href: href, Method: method}, nil
}
