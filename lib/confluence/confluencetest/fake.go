// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package confluencetest runs an in-memory Confluence REST server for
// tests of code built on lib/confluence.
//
// The fake implements the endpoints the client calls, with enough
// state to observe effects: users and group memberships, spaces and
// their permissions, page bodies and versions, and webhooks. It checks
// basic auth on every request. [Server.Fail] injects an error status
// for a method and path prefix.
package confluencetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/accessdesk/accessdesk/lib/confluence"
)

// Credentials accepted by the fake.
const (
	Username = "svc-accessdesk"
	Password = "fake-password"
)

// Secret is a fmt.Stringer password for confluence.Config.
type Secret string

func (s Secret) String() string { return string(s) }

// Server is the fake. Exported methods are safe to call while the
// server handles requests.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[string]confluence.User
	groups      map[string]bool
	members     map[string][]string // group → usernames
	spaces      map[string]confluence.Space
	permissions map[string][]confluence.Permission
	grants      map[string][]confluence.Grant // "KEY/group" → grants
	pages       map[string]confluence.Page
	webhooks    []confluence.Webhook
	failures    []failure
	calls       []string
}

type failure struct {
	method string
	prefix string
	status int
}

// New starts a fake and registers its shutdown with t.Cleanup. The
// license group exists from the start.
func New(t *testing.T) *Server {
	t.Helper()
	fake := &Server{
		users:       make(map[string]confluence.User),
		groups:      map[string]bool{confluence.LicenseGroup: true},
		members:     make(map[string][]string),
		spaces:      make(map[string]confluence.Space),
		permissions: make(map[string][]confluence.Permission),
		grants:      make(map[string][]confluence.Grant),
		pages:       make(map[string]confluence.Page),
	}
	fake.Server = httptest.NewServer(fake.routes())
	t.Cleanup(fake.Close)
	return fake
}

// Client returns a client for the fake with limiting disabled.
func (s *Server) Client(t *testing.T) *confluence.Client {
	t.Helper()
	client, err := confluence.NewClient(confluence.Config{
		BaseURL:           s.URL,
		Username:          Username,
		Password:          Secret(Password),
		RequestsPerSecond: -1,
		HTTPClient:        s.Server.Client(),
	})
	if err != nil {
		t.Fatalf("confluence.NewClient: %v", err)
	}
	return client
}

// AddUser creates a user, licensed or not.
func (s *Server) AddUser(username string, licensed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(username, username)
	if licensed {
		s.addMemberLocked(username, confluence.LicenseGroup)
	}
}

// AddGroup creates a group.
func (s *Server) AddGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[name] = true
}

// AddSpace creates a space whose administer permission is held by
// the given users.
func (s *Server) AddSpace(key string, admins ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaces[key] = confluence.Space{ID: int64(len(s.spaces) + 1), Key: key, Name: key, Type: "global"}
	for _, admin := range admins {
		user, ok := s.users[admin]
		if !ok {
			user = s.addUserLocked(admin, admin)
		}
		s.permissions[key] = append(s.permissions[key], confluence.Permission{
			Operation: confluence.PermissionOperation{OperationKey: confluence.OperationAdminister, TargetType: "space"},
			Subject:   confluence.PermissionSubject{Type: confluence.SubjectUser, UserKey: user.UserKey},
		})
	}
}

// SetUserKey overrides a user's key; an empty key mimics a directory
// that does not report one.
func (s *Server) SetUserKey(username, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.UserKey = key
	s.users[username] = user
}

// AddGroupPermission grants operation on the space to a group.
func (s *Server) AddGroupPermission(key, group, operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[key] = append(s.permissions[key], confluence.Permission{
		Operation: confluence.PermissionOperation{OperationKey: operation, TargetType: "space"},
		Subject:   confluence.PermissionSubject{Type: "group", GroupName: group},
	})
}

// AddPage stores a page.
func (s *Server) AddPage(id, title, body string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = confluence.Page{
		ID:      id,
		Type:    "page",
		Title:   title,
		Version: confluence.PageVersion{Number: version},
		Body:    confluence.PageBody{Storage: confluence.StorageValue{Value: body, Representation: "storage"}},
	}
}

// AddWebhook registers a webhook.
func (s *Server) AddWebhook(name, url string, events ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks = append(s.webhooks, confluence.Webhook{ID: int64(len(s.webhooks) + 1), Name: name, URL: url, Events: events, Active: true})
}

// Fail makes requests with method whose path starts with prefix
// answer status. Later registrations take precedence.
func (s *Server) Fail(method, prefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, prefix: prefix, status: status})
}

// UserExists reports whether username exists.
func (s *Server) UserExists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

// GroupExists reports whether group exists.
func (s *Server) GroupExists(group string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups[group]
}

// InGroup reports whether username is a member of group.
func (s *Server) InGroup(username, group string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.members[group], username)
}

// SpaceExists reports whether a space with key exists.
func (s *Server) SpaceExists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.spaces[key]
	return ok
}

// Grants returns the grants given to group on space key.
func (s *Server) Grants(key, group string) []confluence.Grant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.grants[key+"/"+group])
}

// Page returns the stored page.
func (s *Server) Page(id string) (confluence.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[id]
	return page, ok
}

// Webhooks returns the registered webhooks.
func (s *Server) Webhooks() []confluence.Webhook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.webhooks)
}

// Calls returns "METHOD path" for every request received, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CountCalls returns how many requests matched method and path
// prefix.
func (s *Server) CountCalls(method, prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, call := range s.calls {
		if strings.HasPrefix(call, method+" "+prefix) {
			count++
		}
	}
	return count
}

func (s *Server) addUserLocked(username, displayName string) confluence.User {
	user := confluence.User{
		Username:    username,
		UserKey:     fmt.Sprintf("key-%s", username),
		DisplayName: displayName,
		Type:        "known",
	}
	s.users[username] = user
	return user
}

func (s *Server) addMemberLocked(username, group string) {
	if !slices.Contains(s.members[group], username) {
		s.members[group] = append(s.members[group], username)
	}
}

// --- HTTP ---

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/user", s.handleGetUser)
	mux.HandleFunc("POST /rest/api/admin/user", s.handleCreateUser)
	mux.HandleFunc("GET /rest/api/user/memberof", s.handleMemberOf)
	mux.HandleFunc("PUT /rest/api/user/{username}/group/{group}", s.handleAddMember)
	mux.HandleFunc("GET /rest/api/group/{name}", s.handleGetGroup)
	mux.HandleFunc("GET /rest/api/group/{name}/member", s.handleGroupMembers)
	mux.HandleFunc("POST /rest/api/admin/group", s.handleCreateGroup)
	mux.HandleFunc("POST /rest/api/space", s.handleCreateSpace)
	mux.HandleFunc("GET /rest/api/space/{key}/permissions", s.handleSpacePermissions)
	mux.HandleFunc("PUT /rest/api/space/{key}/permissions/group/{group}/grant", s.handleGrant)
	mux.HandleFunc("GET /rest/api/content/{id}", s.handleGetPage)
	mux.HandleFunc("PUT /rest/api/content/{id}", s.handleUpdatePage)
	mux.HandleFunc("GET /rest/api/webhooks", s.handleListWebhooks)
	mux.HandleFunc("POST /rest/api/webhooks", s.handleCreateWebhook)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != Username || password != Password {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		status := 0
		for i := len(s.failures) - 1; i >= 0; i-- {
			failure := s.failures[i]
			if failure.method == r.Method && strings.HasPrefix(r.URL.Path, failure.prefix) {
				status = failure.status
				break
			}
		}
		s.mu.Unlock()
		if status != 0 {
			writeError(w, status, "injected failure")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": message})
}

type listing[T any] struct {
	Results []T `json:"results"`
	Start   int `json:"start"`
	Limit   int `json:"limit"`
	Size    int `json:"size"`
}

// paginate slices items by the start and limit query parameters.
func paginate[T any](r *http.Request, items []T) listing[T] {
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 25
	}
	start = min(max(start, 0), len(items))
	end := min(start+limit, len(items))
	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	return listing[T]{Results: page, Start: start, Limit: limit, Size: len(page)}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user, ok := s.users[r.URL.Query().Get("username")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "No user found with username")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserName       string `json:"userName"`
		FullName       string `json:"fullName"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		NotifyViaEmail *bool  `json:"notifyViaEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserName == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "userName and password are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[body.UserName]; exists {
		writeError(w, http.StatusConflict, "user exists")
		return
	}
	s.addUserLocked(body.UserName, body.FullName)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleMemberOf(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	s.mu.Lock()
	if _, ok := s.users[username]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "No user found with username")
		return
	}
	var groups []confluence.Group
	for group, usernames := range s.members {
		if slices.Contains(usernames, username) {
			groups = append(groups, confluence.Group{Name: group, Type: "group"})
		}
	}
	s.mu.Unlock()
	slices.SortFunc(groups, func(a, b confluence.Group) int { return strings.Compare(a.Name, b.Name) })
	writeJSON(w, http.StatusOK, paginate(r, groups))
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	username, group := r.PathValue("username"), r.PathValue("group")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if !s.groups[group] {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	s.addMemberLocked(username, group)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.mu.Lock()
	exists := s.groups[name]
	s.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	writeJSON(w, http.StatusOK, confluence.Group{Name: name, Type: "group"})
}

func (s *Server) handleGroupMembers(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.mu.Lock()
	if !s.groups[name] {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	var users []confluence.User
	for _, username := range s.members[name] {
		users = append(users, s.users[username])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, users))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var body confluence.Group
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groups[body.Name] {
		writeError(w, http.StatusConflict, "group exists")
		return
	}
	s.groups[body.Name] = true
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key  string `json:"key"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.spaces[body.Key]; exists {
		writeError(w, http.StatusBadRequest, "A space already exists with key "+body.Key)
		return
	}
	space := confluence.Space{ID: int64(len(s.spaces) + 1), Key: body.Key, Name: body.Name, Type: body.Type}
	s.spaces[body.Key] = space
	writeJSON(w, http.StatusOK, space)
}

func (s *Server) handleSpacePermissions(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	s.mu.Lock()
	_, exists := s.spaces[key]
	permissions := slices.Clone(s.permissions[key])
	s.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "space not found")
		return
	}
	if permissions == nil {
		permissions = []confluence.Permission{}
	}
	writeJSON(w, http.StatusOK, permissions)
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	key, group := r.PathValue("key"), r.PathValue("group")
	var grants []confluence.Grant
	if err := json.NewDecoder(r.Body).Decode(&grants); err != nil {
		writeError(w, http.StatusBadRequest, "malformed grant list")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.spaces[key]; !exists {
		writeError(w, http.StatusNotFound, "space not found")
		return
	}
	s.grants[key+"/"+group] = append(s.grants[key+"/"+group], grants...)
	for _, grant := range grants {
		s.permissions[key] = append(s.permissions[key], confluence.Permission{
			Operation: confluence.PermissionOperation{OperationKey: grant.OperationKey, TargetType: grant.TargetType},
			Subject:   confluence.PermissionSubject{Type: "group", GroupName: group},
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	page, ok := s.pages[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Version confluence.PageVersion `json:"version"`
		Title   string                 `json:"title"`
		Type    string                 `json:"type"`
		Body    confluence.PageBody    `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[id]
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	if body.Version.Number != page.Version.Number+1 {
		writeError(w, http.StatusConflict, "version must be incremented by one")
		return
	}
	page.Title = body.Title
	page.Version = body.Version
	page.Body = body.Body
	s.pages[id] = page
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	webhooks := slices.Clone(s.webhooks)
	s.mu.Unlock()
	if webhooks == nil {
		webhooks = []confluence.Webhook{}
	}
	writeJSON(w, http.StatusOK, listing[confluence.Webhook]{Results: webhooks, Size: len(webhooks), Limit: len(webhooks)})
}

func (s *Server) handleCreateWebhook(w http.ResponseWriter, r *http.Request) {
	var body confluence.Webhook
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" || body.URL == "" {
		writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}
	s.mu.Lock()
	body.ID = int64(len(s.webhooks) + 1)
	s.webhooks = append(s.webhooks, body)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, body)
}
