// Package apitest runs an in-process backend that speaks the Star Supla
// envelope protocol: double-encoded object lists, $oid identifiers,
// bespoke User/Role/Page collections and multipart uploads.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/transport"
	"github.com/frahmantamala/star-supla/internal/transport/middleware"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ProjectID = "test-project"

type Document = map[string]interface{}

// Recorded is one request as the backend saw it.
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type failure struct {
	status  int
	message string
	raw     []byte
}

type Server struct {
	*httptest.Server
	*transport.BaseHandler

	mu          sync.Mutex
	tables      map[string][]Document
	collections map[string][]Document
	credentials map[string]string
	sessions    map[string]string
	me          Document
	myRoles     json.RawMessage
	uploads     map[string]bool
	failures    map[string]failure
	requests    []Recorded
}

func NewServer() *Server {
	s := &Server{
		tables:      make(map[string][]Document),
		collections: map[string][]Document{"User": nil, "Role": nil, "Page": nil},
		credentials: make(map[string]string),
		sessions:    make(map[string]string),
		uploads:     make(map[string]bool),
		failures:    make(map[string]failure),
		myRoles:     json.RawMessage(`{"isSuperAdmin":true}`),
	}
	s.BaseHandler = transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Server = httptest.NewServer(s.routes())
	return s
}

// Config points a client at this backend.
func (s *Server) Config() internal.APIConfig {
	return internal.APIConfig{BaseURL: s.URL + "/api/", ProjectID: ProjectID}
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(s.Logger))
	router.Use(s.record)
	router.Use(s.injectFailures)

	router.Route("/api", func(r chi.Router) {
		r.Post("/Login", s.login)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireSession(s.validSession))

			pr.Get("/Me", s.getMe)
			pr.Get("/Me/Role", s.getMyRoles)
			pr.Put("/Me/ChangePassword", s.changeOwnPassword)

			for _, name := range []string{"User", "Role", "Page"} {
				collection := name
				pr.Get("/"+collection, s.listCollection(collection))
				pr.Post("/"+collection, s.createInCollection(collection))
				pr.Put("/"+collection, s.updateInCollection(collection))
				pr.Delete("/"+collection, s.deleteFromCollection(collection))
			}

			pr.Post("/Obj/Upload/{pageName}", s.upload)
			pr.Delete("/Obj/Upload/{pageName}", s.deleteUpload)

			pr.Get("/Obj/{table}", s.listObjects)
			pr.Post("/Obj/{table}", s.createObject)
			pr.Get("/Obj/{table}/{id}", s.getObject)
			pr.Put("/Obj/{table}/{id}", s.updateObject)
			pr.Delete("/Obj/{table}/{id}", s.deleteObject)
		})
	})
	return router
}

// ----------------- SEEDING -----------------

func (s *Server) AddCredential(name, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[name] = password
}

// IssueSession registers token as valid without a login round trip.
func (s *Server) IssueSession(token, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = name
}

func (s *Server) SetMe(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.me = doc
}

func (s *Server) SetMyRoles(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.myRoles = json.RawMessage(raw)
}

// Seed stores documents as given, so tests control the _id shape.
func (s *Server) Seed(table string, docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], docs...)
}

func (s *Server) SeedCollection(name string, docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = append(s.collections[name], docs...)
}

func (s *Server) Table(table string) []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Document(nil), s.tables[table]...)
}

func (s *Server) Collection(name string) []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Document(nil), s.collections[name]...)
}

func (s *Server) HasUpload(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[url]
}

// FailWith makes method+path answer status with message until cleared.
// path is relative to the API root, e.g. "Me/Role".
func (s *Server) FailWith(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" /api/"+path] = failure{status: status, message: message}
}

// RespondRaw makes method+path answer status with body verbatim.
func (s *Server) RespondRaw(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" /api/"+path] = failure{status: status, raw: []byte(body)}
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo filters recorded requests by method and API-relative path.
func (s *Server) RequestsTo(method, path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == "/api/"+path {
			out = append(out, r)
		}
	}
	return out
}

// ----------------- MIDDLEWARE -----------------

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if f.raw != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			w.Write(f.raw)
			return
		}
		s.WriteError(w, f.status, f.message)
	})
}

func (s *Server) validSession(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	return ok
}

// ----------------- AUTH -----------------

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pw, ok := s.credentials[req.Name]; !ok || pw != req.Password {
		s.WriteError(w, http.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı")
		return
	}

	token := uuid.NewString()
	s.sessions[token] = req.Name
	s.WriteResult(w, token)
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	me := s.me
	if me == nil {
		me = Document{"name": s.sessions[r.Header.Get(middleware.SessionKeyHeader)]}
	}
	s.mu.Unlock()
	s.WriteJSON(w, http.StatusOK, me)
}

func (s *Server) getMyRoles(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	raw := s.myRoles
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (s *Server) changeOwnPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		s.WriteError(w, http.StatusBadRequest, "password is required")
		return
	}

	s.mu.Lock()
	name := s.sessions[r.Header.Get(middleware.SessionKeyHeader)]
	s.credentials[name] = req.Password
	s.mu.Unlock()

	s.WriteResult(w, true)
}

// ----------------- BESPOKE COLLECTIONS -----------------

func (s *Server) listCollection(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		items := make([]Document, 0, len(s.collections[name]))
		for _, doc := range s.collections[name] {
			items = append(items, withoutPassword(doc))
		}
		s.mu.Unlock()
		s.WriteJSON(w, http.StatusOK, items)
	}
}

func (s *Server) createInCollection(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			s.WriteError(w, http.StatusBadRequest, "invalid body")
			return
		}
		doc["id"] = uuid.NewString()

		s.mu.Lock()
		s.collections[name] = append(s.collections[name], doc)
		if name == "User" {
			if userName, ok := doc["name"].(string); ok {
				if pw, ok := doc["password"].(string); ok {
					s.credentials[userName] = pw
				}
			}
		}
		s.mu.Unlock()

		s.WriteResult(w, doc["id"])
	}
}

func (s *Server) updateInCollection(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			s.WriteError(w, http.StatusBadRequest, "invalid body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		for _, existing := range s.collections[name] {
			if existing["id"] == doc["id"] {
				for k, v := range doc {
					existing[k] = v
				}
				s.WriteResult(w, true)
				return
			}
		}
		s.WriteError(w, http.StatusNotFound, name+" not found")
	}
}

func (s *Server) deleteFromCollection(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.WriteError(w, http.StatusBadRequest, "invalid body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		docs := s.collections[name]
		for i, existing := range docs {
			if existing["id"] == req.ID {
				s.collections[name] = append(docs[:i], docs[i+1:]...)
				s.WriteResult(w, true)
				return
			}
		}
		s.WriteError(w, http.StatusNotFound, name+" not found")
	}
}

// ----------------- UPLOADS -----------------

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.WriteError(w, http.StatusBadRequest, "multipart body expected")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	variant := "original"
	if r.FormValue("isResize") == "true" {
		variant = "resized"
	}
	fileURL := fmt.Sprintf("https://cdn.test/%s/%s/%s", chi.URLParam(r, "pageName"), variant, header.Filename)

	s.mu.Lock()
	s.uploads[fileURL] = true
	s.mu.Unlock()

	s.WriteResult(w, fileURL)
}

func (s *Server) deleteUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	existed := s.uploads[req.FileName]
	delete(s.uploads, req.FileName)
	s.mu.Unlock()

	s.WriteResult(w, existed)
}

// ----------------- OBJECT TABLES -----------------

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var filter Document
	if q := r.URL.Query().Get("query"); q != "" {
		if err := json.Unmarshal([]byte(q), &filter); err != nil {
			s.WriteError(w, http.StatusBadRequest, "invalid query")
			return
		}
	}

	s.mu.Lock()
	var items []Document
	for _, doc := range s.tables[table] {
		if matches(doc, filter) {
			items = append(items, doc)
		}
	}
	s.mu.Unlock()

	if raw := r.URL.Query().Get("sort"); raw != "" {
		keys, err := parseSort(raw)
		if err != nil {
			s.WriteError(w, http.StatusBadRequest, "invalid sort")
			return
		}
		sortDocuments(items, keys)
	}

	total := len(items)
	resp := Document{"totalCount": total}

	pageIndex, errIndex := strconv.Atoi(r.URL.Query().Get("pageIndex"))
	pageSize, errSize := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if errIndex == nil && errSize == nil && pageSize > 0 {
		start := pageIndex * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		items = items[start:end]
		resp["totalPage"] = (total + pageSize - 1) / pageSize
	}

	if items == nil {
		items = []Document{}
	}
	inner, _ := json.Marshal(items)
	resp["result"] = string(inner)
	s.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) createObject(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDetail(w, r)
	if !ok {
		return
	}
	id := primitive.NewObjectID().Hex()
	doc["_id"] = Document{"$oid": id}

	s.mu.Lock()
	table := chi.URLParam(r, "table")
	s.tables[table] = append(s.tables[table], doc)
	s.mu.Unlock()

	s.WriteResult(w, id)
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc, _ := s.find(chi.URLParam(r, "table"), chi.URLParam(r, "id"))
	s.mu.Unlock()

	if doc == nil {
		s.WriteError(w, http.StatusNotFound, "object not found")
		return
	}
	inner, _ := json.Marshal(doc)
	s.WriteResult(w, string(inner))
}

func (s *Server) updateObject(w http.ResponseWriter, r *http.Request) {
	patch, ok := s.decodeDetail(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _ := s.find(chi.URLParam(r, "table"), chi.URLParam(r, "id"))
	if doc == nil {
		s.WriteError(w, http.StatusNotFound, "object not found")
		return
	}
	for k, v := range patch {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}
	s.WriteResult(w, true)
}

func (s *Server) deleteObject(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx := s.find(table, chi.URLParam(r, "id"))
	if idx < 0 {
		s.WriteError(w, http.StatusNotFound, "object not found")
		return
	}
	docs := s.tables[table]
	s.tables[table] = append(docs[:idx], docs[idx+1:]...)
	s.WriteResult(w, true)
}

func (s *Server) find(table, id string) (Document, int) {
	for i, doc := range s.tables[table] {
		if documentID(doc) == id {
			return doc, i
		}
	}
	return nil, -1
}

// ----------------- HELPERS -----------------

func (s *Server) decodeDetail(w http.ResponseWriter, r *http.Request) (Document, bool) {
	var envelope struct {
		Detail string `json:"Detail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		s.WriteError(w, http.StatusBadRequest, "Detail envelope expected")
		return nil, false
	}
	var doc Document
	if err := json.Unmarshal([]byte(envelope.Detail), &doc); err != nil {
		s.WriteError(w, http.StatusBadRequest, "Detail is not a JSON document")
		return nil, false
	}
	return doc, true
}

func documentID(doc Document) string {
	if oid, ok := doc["_id"].(Document); ok {
		if v, ok := oid["$oid"].(string); ok {
			return v
		}
	}
	if v, ok := doc["_id"].(string); ok {
		return v
	}
	if v, ok := doc["id"].(string); ok {
		return v
	}
	return ""
}

// matches supports plain equality and $gte/$lte ranges, which is all the
// client ever sends.
func matches(doc, filter Document) bool {
	for field, cond := range filter {
		value := doc[field]
		if ops, ok := cond.(Document); ok {
			for op, bound := range ops {
				c := compare(value, bound)
				switch op {
				case "$gte":
					if c < 0 {
						return false
					}
				case "$lte":
					if c > 0 {
						return false
					}
				case "$gt":
					if c <= 0 {
						return false
					}
				case "$lt":
					if c >= 0 {
						return false
					}
				}
			}
			continue
		}
		if compare(value, cond) != 0 {
			return false
		}
	}
	return true
}

func compare(a, b interface{}) int {
	af, aNum := number(a)
	bf, bNum := number(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

type sortKey struct {
	field string
	desc  bool
}

// parseSort keeps key order from the raw document.
func parseSort(raw string) ([]sortKey, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []sortKey
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		field, _ := tok.(string)
		var dir float64
		if err := dec.Decode(&dir); err != nil {
			return nil, err
		}
		keys = append(keys, sortKey{field: field, desc: dir < 0})
	}
	return keys, nil
}

func sortDocuments(items []Document, keys []sortKey) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, k := range keys {
			c := compare(items[i][k.field], items[j][k.field])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func withoutPassword(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == "password" {
			continue
		}
		out[k] = v
	}
	return out
}
