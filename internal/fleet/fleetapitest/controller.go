package fleetapitest

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/infra/httpserver"

	"github.com/gorilla/mux"
)

type apiController struct {
	server *Server
}

var _ httpserver.Controller = (*apiController)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type listResponse struct {
	Data []domain.Record `json:"data"`
}

func (c *apiController) AddRoutes(router *mux.Router) {
	router.Use(c.recording)

	router.Handle("/auth/login", c.login()).Methods(http.MethodPost)
	router.Handle("/Users", c.register()).Methods(http.MethodPost)

	for _, key := range c.server.registry.Keys() {
		entityType, _ := c.server.registry.Lookup(key)
		base := "/" + strings.Trim(entityType.APIPath, "/")

		router.Handle(base, c.list(entityType)).Methods(http.MethodGet)
		router.Handle(base+"/search", c.authenticated(c.search(entityType))).Methods(http.MethodGet)
		router.Handle(base, c.authenticated(c.create(entityType))).Methods(http.MethodPost)
		router.Handle(base+"/{id}", c.authenticated(c.update(entityType))).Methods(http.MethodPut)
		router.Handle(base+"/{id}", c.authenticated(c.remove(entityType))).Methods(http.MethodDelete)
	}
}

func (c *apiController) recording(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status, failing := c.server.record(r); failing {
			httpserver.ReplyWithError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *apiController) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := httpserver.GetBearerToken(r)

		c.server.mu.Lock()
		_, valid := c.server.tokens[token]
		c.server.mu.Unlock()

		if !valid {
			httpserver.ReplyWithError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *apiController) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		c.server.mu.Lock()
		defer c.server.mu.Unlock()

		account, ok := c.server.users[body.Username]
		if !ok || account.password != body.Password {
			httpserver.ReplyWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, map[string]string{
			"access_token": c.server.issueToken(body.Username),
		})
	}
}

func (c *apiController) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.Username == "" || body.Password == "" {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		c.server.mu.Lock()
		defer c.server.mu.Unlock()

		if _, exists := c.server.users[body.Username]; exists {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "username already taken")
			return
		}
		c.server.users[body.Username] = user{password: body.Password, roles: body.Roles}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, map[string]any{
			"username": body.Username,
			"roles":    body.Roles,
		})
	}
}

func (c *apiController) list(entityType domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpserver.ReplyJSONResponse(w, http.StatusOK, listResponse{Data: c.server.matching(entityType.Key, nil)})
	}
}

func (c *apiController) search(entityType domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := make(map[string]string)
		for name, values := range r.URL.Query() {
			if _, ok := entityType.Field(domain.FieldName(name)); !ok {
				httpserver.ReplyWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown field %q", name))
				return
			}
			filters[name] = values[0]
		}
		httpserver.ReplyJSONResponse(w, http.StatusOK, listResponse{Data: c.server.matching(entityType.Key, filters)})
	}
}

func (c *apiController) create(entityType domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeEntityBody(w, r, entityType)
		if !ok {
			return
		}
		for _, f := range entityType.Fields {
			if _, present := body[f.Name.String()]; f.IsRequired && !present {
				httpserver.ReplyWithError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", f.Name))
				return
			}
		}

		c.server.mu.Lock()
		defer c.server.mu.Unlock()

		for name, value := range c.server.defaults[entityType.Key] {
			if _, present := body[name]; !present {
				body[name] = value
			}
		}
		id := c.server.nextID[entityType.Key]
		c.server.nextID[entityType.Key] = id + 1
		body["id"] = int(id)
		c.server.records[entityType.Key][id] = body

		httpserver.ReplyJSONResponse(w, http.StatusCreated, body)
	}
}

func (c *apiController) update(entityType domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.GetIntPathParam(r, "id")
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		body, ok := decodeEntityBody(w, r, entityType)
		if !ok {
			return
		}

		c.server.mu.Lock()
		defer c.server.mu.Unlock()

		record, exists := c.server.records[entityType.Key][domain.ID(id)]
		if !exists {
			httpserver.ReplyWithError(w, http.StatusNotFound, "not found")
			return
		}
		maps.Copy(record, body)

		httpserver.ReplyJSONResponse(w, http.StatusOK, record)
	}
}

func (c *apiController) remove(entityType domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.GetIntPathParam(r, "id")
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		c.server.mu.Lock()
		defer c.server.mu.Unlock()

		if _, exists := c.server.records[entityType.Key][domain.ID(id)]; !exists {
			httpserver.ReplyWithError(w, http.StatusNotFound, "not found")
			return
		}
		delete(c.server.records[entityType.Key], domain.ID(id))

		httpserver.ReplyJSONResponse(w, http.StatusOK, map[string]int{"id": id})
	}
}

// decodeEntityBody reads a create or update body. The identifier travels in
// the URL, so a body carrying one is rejected, as are undeclared fields.
func decodeEntityBody(w http.ResponseWriter, r *http.Request, entityType domain.EntityType) (domain.Record, bool) {
	var body map[string]any
	if err := httpserver.DecodeJSONBody(r, &body); err != nil {
		httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if _, hasID := body["id"]; hasID {
		httpserver.ReplyWithError(w, http.StatusBadRequest, "id is not allowed in the body")
		return nil, false
	}
	for name := range body {
		if _, ok := entityType.Field(domain.FieldName(name)); !ok {
			httpserver.ReplyWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown field %q", name))
			return nil, false
		}
	}
	return domain.Record(body), true
}

// matching returns the records whose fields equal every filter, ordered by id.
func (s *Server) matching(key domain.EntityKey, filters map[string]string) []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]domain.Record, 0, len(s.records[key]))
	for _, id := range slices.Sorted(maps.Keys(s.records[key])) {
		record := s.records[key][id]
		if matchesAll(record, filters) {
			matches = append(matches, maps.Clone(record))
		}
	}
	return matches
}

func matchesAll(record domain.Record, filters map[string]string) bool {
	for name, want := range filters {
		value, ok := record[name]
		if !ok || formatValue(value) != want {
			return false
		}
	}
	return true
}

func formatValue(value any) string {
	switch v := value.(type) {
	case json.Number:
		return v.String()
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
