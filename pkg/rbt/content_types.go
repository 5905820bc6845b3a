package rbt

import (
	"fmt"
	"sort"
	"strings"
)

// ContentTypes maps a resource name to the media type its responses must
// declare.
type ContentTypes interface {
	Lookup(name string) (string, error)
}

// Registry is an immutable ContentTypes backed by a map.
type Registry struct {
	types map[string]string
}

// NewRegistry copies types into a new registry. Names are sanitized.
func NewRegistry(types map[string]string) *Registry {
	registry := &Registry{types: make(map[string]string, len(types))}
	for name, mediaType := range types {
		registry.types[Sanitize(name)] = mediaType
	}

	return registry
}

// Lookup returns the media type registered for name.
func (r *Registry) Lookup(name string) (string, error) {
	mediaType, ok := r.types[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}

	return mediaType, nil
}

// With returns a new registry holding r's entries overridden by types.
func (r *Registry) With(types map[string]string) *Registry {
	merged := make(map[string]string, len(r.types)+len(types))
	for name, mediaType := range r.types {
		merged[name] = mediaType
	}

	for name, mediaType := range types {
		merged[Sanitize(name)] = mediaType
	}

	return &Registry{types: merged}
}

// Names returns the registered resource names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.types)
}

// MediaType builds a Review Board vendor media type,
// e.g. "review-requests" -> "application/vnd.reviewboard.org.review-requests+json".
func MediaType(subtype string) string {
	return "application/vnd.reviewboard.org." + strings.ReplaceAll(subtype, "_", "-") + "+json"
}

// DefaultContentTypes returns the registry for the resources reachable from
// the Review Board API root.
func DefaultContentTypes() *Registry {
	return NewRegistry(map[string]string{
		RootResource:               MediaType("root"),
		"review_requests":          MediaType("review-requests"),
		"review_request":           MediaType("review-request"),
		"create":                   MediaType("review-request"),
		"update":                   MediaType("review-request"),
		"delete":                   MediaType("review-request"),
		"default_reviewers":        MediaType("default-reviewers"),
		"extensions":               MediaType("extensions"),
		"groups":                   MediaType("review-groups"),
		"hosting_service_accounts": MediaType("hosting-service-accounts"),
		"hosting_services":         MediaType("hosting-services"),
		"info":                     MediaType("server-info"),
		"repositories":             MediaType("repositories"),
		"search":                   MediaType("search"),
		"session":                  MediaType("session"),
		"users":                    MediaType("users"),
		"validation":               MediaType("validators"),
		"webhooks":                 MediaType("webhooks"),
	})
}
