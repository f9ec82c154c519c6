// Package fleetapitest runs an in-memory fleet API for tests. It follows the
// REST contract of the real server: bearer tokens from auth/login, list and
// search envelopes, echoed creates and updates, and {id} on delete.
package fleetapitest

import (
	"bytes"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/infra/httpserver"

	"github.com/google/uuid"
)

// RecordedRequest is a request as the server received it.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type user struct {
	password string
	roles    []string
}

type failure struct {
	status int
	times  int
}

type Server struct {
	*httptest.Server

	registry *domain.Registry

	mu       sync.Mutex
	users    map[string]user
	tokens   map[string]string
	records  map[domain.EntityKey]map[domain.ID]domain.Record
	nextID   map[domain.EntityKey]domain.ID
	requests []RecordedRequest
	failures map[string]*failure
	defaults map[domain.EntityKey]domain.Record
}

// NewServer starts a server exposing every entity type of the registry.
// Callers must Close it.
func NewServer(registry *domain.Registry) *Server {
	s := &Server{
		registry: registry,
		users:    make(map[string]user),
		tokens:   make(map[string]string),
		records:  make(map[domain.EntityKey]map[domain.ID]domain.Record),
		nextID:   make(map[domain.EntityKey]domain.ID),
		failures: make(map[string]*failure),
		defaults: make(map[domain.EntityKey]domain.Record),
	}
	for _, key := range registry.Keys() {
		s.records[key] = make(map[domain.ID]domain.Record)
		s.nextID[key] = 1
	}

	api := httpserver.NewServer("", &apiController{server: s})
	s.Server = httptest.NewServer(api.Handler())
	return s
}

// BaseURL ends with a slash, like the configured API base URL.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

func (s *Server) AddUser(username, password string, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = user{password: password, roles: roles}
}

// IssueToken returns a valid bearer token for username without a login call.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(username)
}

func (s *Server) issueToken(username string) string {
	token := uuid.NewString()
	s.tokens[token] = username
	return token
}

// Seed stores records of the entity type and returns their identifiers. A
// record without an "id" gets the next free one.
func (s *Server) Seed(key domain.EntityKey, records ...domain.Record) []domain.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]domain.ID, 0, len(records))
	for _, record := range records {
		stored := maps.Clone(record)
		id, ok := recordID(stored)
		if !ok {
			id = s.nextID[key]
		}
		if id >= s.nextID[key] {
			s.nextID[key] = id + 1
		}
		stored["id"] = int(id)
		s.records[key][id] = stored
		ids = append(ids, id)
	}
	return ids
}

// SetCreateDefaults sets server-assigned fields, such as a flight date, that
// created records of the type get when the body leaves them out.
func (s *Server) SetCreateDefaults(key domain.EntityKey, defaults domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[key] = maps.Clone(defaults)
}

// Record returns a copy of a stored record.
func (s *Server) Record(key domain.EntityKey, id domain.ID) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key][id]
	return maps.Clone(record), ok
}

func (s *Server) Count(key domain.EntityKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[key])
}

// FailNext makes the next times requests to method and path answer with
// status instead of being served.
func (s *Server) FailNext(method, path string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = &failure{status: status, times: times}
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) ClearRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// record stores the request and reports an injected failure for it, if any.
func (s *Server) record(r *http.Request) (int, bool) {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})

	key := r.Method + " " + r.URL.Path
	f, ok := s.failures[key]
	if !ok {
		return 0, false
	}
	f.times--
	if f.times <= 0 {
		delete(s.failures, key)
	}
	return f.status, true
}

func recordID(record domain.Record) (domain.ID, bool) {
	switch v := record["id"].(type) {
	case int:
		return domain.ID(v), true
	case float64:
		return domain.ID(v), true
	case domain.ID:
		return v, true
	default:
		return 0, false
	}
}
