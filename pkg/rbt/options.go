package rbt

import (
	"fmt"
	"strings"
)

// CollisionPolicy decides what happens when two payload keys sanitize to the
// same attribute name, e.g. "time-added" and "time_added".
type CollisionPolicy int

const (
	// CollisionReject fails the build with a *CollisionError.
	CollisionReject CollisionPolicy = iota
	// CollisionLastWins applies the extra fields first, then the payload keys
	// in sorted order; the later key wins.
	CollisionLastWins
)

// String implements fmt.Stringer.
func (p CollisionPolicy) String() string {
	switch p {
	case CollisionLastWins:
		return "last-wins"
	default:
		return "reject"
	}
}

// ParseCollisionPolicy parses "reject" or "last-wins".
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return CollisionReject, nil
	case "last-wins", "last_wins":
		return CollisionLastWins, nil
	default:
		return CollisionReject, fmt.Errorf("%w: unknown collision policy %q", ErrInvalidPolicy, s)
	}
}

// LinkSearch decides where links are looked for when a component has no
// top-level links field.
type LinkSearch int

const (
	// LinkSearchFirst descends only into the first nested object (or list of
	// objects) in field order, depth-first, until a links field is found.
	LinkSearchFirst LinkSearch = iota
	// LinkSearchAll descends into every nested object and list element.
	LinkSearchAll
)

// String implements fmt.Stringer.
func (s LinkSearch) String() string {
	switch s {
	case LinkSearchAll:
		return "all"
	default:
		return "first"
	}
}

// ParseLinkSearch parses "first" or "all".
func ParseLinkSearch(s string) (LinkSearch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return LinkSearchFirst, nil
	case "all":
		return LinkSearchAll, nil
	default:
		return LinkSearchFirst, fmt.Errorf("%w: unknown link search policy %q", ErrInvalidPolicy, s)
	}
}

// Option configures Build, ResolveLinks and Resource.
type Option func(*options)

type options struct {
	contentTypes ContentTypes
	collision    CollisionPolicy
	linkSearch   LinkSearch
	logger       Logger
}

func newOptions(opts []Option) *options {
	o := &options{
		contentTypes: DefaultContentTypes(),
		collision:    CollisionReject,
		linkSearch:   LinkSearchFirst,
		logger:       nopLogger{},
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithContentTypes sets the registry consulted for expected media types.
func WithContentTypes(registry ContentTypes) Option {
	return func(o *options) {
		if registry != nil {
			o.contentTypes = registry
		}
	}
}

// WithCollisionPolicy sets how sanitization collisions are handled.
func WithCollisionPolicy(policy CollisionPolicy) Option {
	return func(o *options) {
		o.collision = policy
	}
}

// WithLinkSearch sets the nested link discovery policy.
func WithLinkSearch(search LinkSearch) Option {
	return func(o *options) {
		o.linkSearch = search
	}
}

// WithLogger sets the logger used by resources.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
