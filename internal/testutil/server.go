// Package testutil provides a fake Review Board server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/fivetwenty-io/rbt/pkg/rbt"
)

// Credentials accepted by the fake server.
const (
	Username      = "doc"
	Password      = "doc"
	Token         = "0123456789abcdef"
	CSRFToken     = "csrf-test-token"
	SessionCookie = "rbsessionid"
	SessionValue  = "session-test-value"
)

// ReviewRequest is a review request held by the fake server.
type ReviewRequest struct {
	ID         int
	Summary    string
	Repository string
	Status     string
	TimeAdded  string
}

// RecordedRequest is an exchange observed by the fake server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
}

// Server is an httptest server speaking a subset of the Review Board API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []RecordedRequest
	reviews   []ReviewRequest
	nextID    int
	overrides map[string]http.HandlerFunc
}

// NewServer starts a fake server seeded with three review requests.
func NewServer() *Server {
	server := &Server{
		reviews: []ReviewRequest{
			{ID: 1, Summary: "Add hypermedia client", Repository: "rbt", Status: "pending", TimeAdded: "2016-01-10T10:00:00Z"},
			{ID: 2, Summary: "Fix link resolution", Repository: "rbt", Status: "submitted", TimeAdded: "2016-02-15T12:30:00Z"},
			{ID: 3, Summary: "Document the CLI", Repository: "rbt", Status: "pending", TimeAdded: "2016-03-20T08:15:00Z"},
		},
		nextID:    4,
		overrides: make(map[string]http.HandlerFunc),
	}

	server.Server = httptest.NewServer(http.HandlerFunc(server.serve))

	return server
}

// Override replaces the handler for one path, e.g. to serve a wrong content
// type. The path is matched exactly.
func (s *Server) Override(path string, handler http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[path] = handler
}

// Requests returns the exchanges observed so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// ReviewRequests returns the review requests currently held.
func (s *Server) ReviewRequests() []ReviewRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ReviewRequest(nil), s.reviews...)
}

// RootURL returns the API root address.
func (s *Server) RootURL() string {
	return s.URL + rbt.RootPath
}

func (s *Server) serve(writer http.ResponseWriter, request *http.Request) {
	_ = request.ParseForm()

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: request.Method,
		Path:   request.URL.Path,
		Query:  request.URL.Query(),
		Form:   request.PostForm,
		Header: request.Header.Clone(),
	})
	override := s.overrides[request.URL.Path]
	s.mu.Unlock()

	if override != nil {
		override(writer, request)

		return
	}

	path := request.URL.Path

	switch {
	case path == "/account/login/":
		s.login(writer, request)
	case path == "/":
		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = writer.Write([]byte("<html><body>dashboard</body></html>"))
	case path == "/api/":
		s.root(writer, request)
	case path == "/api/info/":
		s.info(writer, request)
	case path == "/api/session/":
		s.session(writer, request)
	case path == "/api/review-requests/":
		s.reviewRequests(writer, request)
	case strings.HasPrefix(path, "/api/review-requests/"):
		s.reviewRequest(writer, request)
	default:
		WriteError(writer, http.StatusNotFound, rbt.ErrorCodeDoesNotExist, "Object does not exist")
	}
}

func (s *Server) link(path, method string) map[string]interface{} {
	return map[string]interface{}{"href": s.URL + path, "method": method}
}

func (s *Server) root(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		WriteError(writer, http.StatusMethodNotAllowed, 0, "")

		return
	}

	WriteJSON(writer, http.StatusOK, rbt.MediaType("root"), map[string]interface{}{
		"stat": "ok",
		"links": map[string]interface{}{
			"self":            s.link("/api/", "GET"),
			"info":            s.link("/api/info/", "GET"),
			"session":         s.link("/api/session/", "GET"),
			"review_requests": s.link("/api/review-requests/", "GET"),
		},
		"uri_templates": map[string]interface{}{
			"review_request": s.URL + "/api/review-requests/{review_request_id}/",
		},
		"product": map[string]interface{}{
			"name":            "Review Board",
			"version":         "7.0.2",
			"is_release":      true,
			"package_version": "7.0.2",
		},
		"site": map[string]interface{}{
			"url":            s.URL + "/",
			"administrators": []interface{}{map[string]interface{}{"name": "Admin", "email": "admin@example.com"}},
			"time_zone":      "UTC",
		},
	})
}

func (s *Server) info(writer http.ResponseWriter, _ *http.Request) {
	WriteJSON(writer, http.StatusOK, rbt.MediaType("server-info"), map[string]interface{}{
		"stat": "ok",
		"info": map[string]interface{}{
			"product": map[string]interface{}{"name": "Review Board", "version": "7.0.2"},
			"capabilities": map[string]interface{}{
				"review_requests": map[string]interface{}{"supports_history": true},
			},
		},
		"links": map[string]interface{}{
			"self": s.link("/api/info/", "GET"),
		},
	})
}

func (s *Server) session(writer http.ResponseWriter, request *http.Request) {
	authenticated := s.authenticated(request)

	WriteJSON(writer, http.StatusOK, rbt.MediaType("session"), map[string]interface{}{
		"stat": "ok",
		"session": map[string]interface{}{
			"authenticated": authenticated,
			"links": map[string]interface{}{
				"self": s.link("/api/session/", "GET"),
			},
		},
	})
}

func (s *Server) reviewRequests(writer http.ResponseWriter, request *http.Request) {
	switch request.Method {
	case http.MethodGet:
		s.listReviewRequests(writer, request)
	case http.MethodPost:
		s.createReviewRequest(writer, request)
	default:
		WriteError(writer, http.StatusMethodNotAllowed, 0, "")
	}
}

func (s *Server) listReviewRequests(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	from := query.Get("time-added-from")
	to := query.Get("time-added-to")

	s.mu.Lock()

	matched := make([]ReviewRequest, 0, len(s.reviews))

	for _, review := range s.reviews {
		if from != "" && review.TimeAdded < from {
			continue
		}

		if to != "" && review.TimeAdded >= to {
			continue
		}

		matched = append(matched, review)
	}

	s.mu.Unlock()

	countsOnly, _ := strconv.ParseBool(query.Get("counts-only"))
	if countsOnly {
		WriteJSON(writer, http.StatusOK, rbt.MediaType("review-requests"), map[string]interface{}{
			"stat":  "ok",
			"count": len(matched),
		})

		return
	}

	items := make([]interface{}, 0, len(matched))
	for _, review := range matched {
		items = append(items, s.reviewPayload(review))
	}

	links := map[string]interface{}{
		"self": s.link("/api/review-requests/", "GET"),
	}

	if from == "" && to == "" && s.authenticated(request) {
		links["create"] = s.link("/api/review-requests/", "POST")
	}

	WriteJSON(writer, http.StatusOK, rbt.MediaType("review-requests"), map[string]interface{}{
		"stat":            "ok",
		"total_results":   len(matched),
		"review_requests": items,
		"links":           links,
	})
}

func (s *Server) createReviewRequest(writer http.ResponseWriter, request *http.Request) {
	if !s.authenticated(request) {
		WriteError(writer, http.StatusUnauthorized, rbt.ErrorCodeNotLoggedIn, "You are not logged in")

		return
	}

	repository := request.PostForm.Get("repository")
	if repository == "" {
		WriteError(writer, http.StatusBadRequest, rbt.ErrorCodeInvalidFormData, "One or more fields had errors")

		return
	}

	s.mu.Lock()
	review := ReviewRequest{
		ID:         s.nextID,
		Summary:    request.PostForm.Get("summary"),
		Repository: repository,
		Status:     "pending",
		TimeAdded:  "2016-04-01T00:00:00Z",
	}
	s.nextID++
	s.reviews = append(s.reviews, review)
	s.mu.Unlock()

	WriteJSON(writer, http.StatusCreated, rbt.MediaType("review-request"), map[string]interface{}{
		"stat":           "ok",
		"review_request": s.reviewPayload(review),
	})
}

func (s *Server) reviewRequest(writer http.ResponseWriter, request *http.Request) {
	idText := strings.Trim(strings.TrimPrefix(request.URL.Path, "/api/review-requests/"), "/")

	id, err := strconv.Atoi(idText)
	if err != nil {
		WriteError(writer, http.StatusNotFound, rbt.ErrorCodeDoesNotExist, "Object does not exist")

		return
	}

	s.mu.Lock()

	index := -1

	for i, review := range s.reviews {
		if review.ID == id {
			index = i
		}
	}

	if index < 0 {
		s.mu.Unlock()
		WriteError(writer, http.StatusNotFound, rbt.ErrorCodeDoesNotExist, "Object does not exist")

		return
	}

	if request.Method != http.MethodGet && !s.authenticated(request) {
		s.mu.Unlock()
		WriteError(writer, http.StatusUnauthorized, rbt.ErrorCodeNotLoggedIn, "You are not logged in")

		return
	}

	switch request.Method {
	case http.MethodDelete:
		s.reviews = append(s.reviews[:index], s.reviews[index+1:]...)
		s.mu.Unlock()
		writer.WriteHeader(http.StatusNoContent)
	case http.MethodPut:
		if summary := request.PostForm.Get("summary"); summary != "" {
			s.reviews[index].Summary = summary
		}

		if status := request.PostForm.Get("status"); status != "" {
			s.reviews[index].Status = status
		}

		review := s.reviews[index]
		s.mu.Unlock()

		WriteJSON(writer, http.StatusOK, rbt.MediaType("review-request"), map[string]interface{}{
			"stat":           "ok",
			"review_request": s.reviewPayload(review),
		})
	case http.MethodGet:
		review := s.reviews[index]
		s.mu.Unlock()

		WriteJSON(writer, http.StatusOK, rbt.MediaType("review-request"), map[string]interface{}{
			"stat":           "ok",
			"review_request": s.reviewPayload(review),
		})
	default:
		s.mu.Unlock()
		WriteError(writer, http.StatusMethodNotAllowed, 0, "")
	}
}

func (s *Server) reviewPayload(review ReviewRequest) map[string]interface{} {
	path := fmt.Sprintf("/api/review-requests/%d/", review.ID)

	return map[string]interface{}{
		"id":         review.ID,
		"summary":    review.Summary,
		"status":     review.Status,
		"time_added": review.TimeAdded,
		"public":     review.Status != "pending",
		"target_people": []interface{}{
			map[string]interface{}{"title": "doc", "href": s.URL + "/api/users/doc/", "method": "GET"},
		},
		"links": map[string]interface{}{
			"self":       s.link(path, "GET"),
			"update":     s.link(path, "PUT"),
			"delete":     s.link(path, "DELETE"),
			"repository": s.link("/api/repositories/"+review.Repository+"/", "GET"),
		},
	}
}

func (s *Server) login(writer http.ResponseWriter, request *http.Request) {
	switch request.Method {
	case http.MethodGet:
		http.SetCookie(writer, &http.Cookie{Name: "csrftoken", Value: CSRFToken, Path: "/"})
		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = writer.Write([]byte(`<html><body><form method="post"></form></body></html>`))
	case http.MethodPost:
		cookie, err := request.Cookie("csrftoken")
		if err != nil || cookie.Value != request.PostForm.Get("csrfmiddlewaretoken") || request.Referer() == "" {
			http.Error(writer, "CSRF verification failed", http.StatusForbidden)

			return
		}

		if request.PostForm.Get("username") != Username || request.PostForm.Get("password") != Password {
			writer.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = writer.Write([]byte(`<html><body>Please enter a correct username and password.</body></html>`))

			return
		}

		http.SetCookie(writer, &http.Cookie{Name: SessionCookie, Value: SessionValue, Path: "/"})

		next := request.PostForm.Get("next")
		if next == "" {
			next = "/"
		}

		http.Redirect(writer, request, next, http.StatusFound)
	default:
		WriteError(writer, http.StatusMethodNotAllowed, 0, "")
	}
}

func (s *Server) authenticated(request *http.Request) bool {
	if request.Header.Get("Authorization") == "token "+Token {
		return true
	}

	cookie, err := request.Cookie(SessionCookie)

	return err == nil && cookie.Value == SessionValue
}

// WriteJSON writes payload with the given content type and status.
func WriteJSON(writer http.ResponseWriter, status int, contentType string, payload interface{}) {
	writer.Header().Set("Content-Type", contentType)
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

// WriteError writes a Review Board error payload.
func WriteError(writer http.ResponseWriter, status, code int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}

	WriteJSON(writer, status, "application/json", map[string]interface{}{
		"stat": "fail",
		"err":  map[string]interface{}{"code": code, "msg": msg},
	})
}
