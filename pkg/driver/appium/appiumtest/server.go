// Package appiumtest provides an in-process fake Appium server for tests.
//
// The server keeps a flat table of named elements. Any locator strategy
// resolves by the element name, with an Android "pkg:id/" prefix stripped.
// Elements that are not Present answer "no such element"; handles issued
// before MarkStale answer "stale element reference".
package appiumtest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// ScreenshotPNG is the payload served by the screenshot endpoint.
var ScreenshotPNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Element is one UI element in the fake app.
type Element struct {
	Name      string
	Text      string
	Value     string // text typed into the element
	Present   bool
	Displayed bool
	Enabled   bool

	generation int
}

func (e *Element) handle() string {
	return fmt.Sprintf("%s~%d", e.Name, e.generation)
}

// Server is a fake Appium server.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	elements   map[string]*Element
	onClick    map[string]func(s *Server)
	clicks     map[string]int
	sessions   []map[string]interface{}
	deleted    int
	sessionID  string
	rejectWith string
	required   []string

	implicitMs  int64
	implicitSet bool
	latency     time.Duration
}

// NewServer starts a fake Appium server with no elements.
func NewServer() *Server {
	s := &Server{
		elements: make(map[string]*Element),
		onClick:  make(map[string]func(s *Server)),
		clicks:   make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/session", s.handleNewSession).Methods(http.MethodPost)

	sr := r.PathPrefix("/session/{sid}").Subrouter()
	sr.Use(s.requireSession)
	sr.HandleFunc("", s.handleDeleteSession).Methods(http.MethodDelete)
	sr.HandleFunc("/window/rect", s.handleWindowRect).Methods(http.MethodGet)
	sr.HandleFunc("/timeouts", s.handleTimeouts).Methods(http.MethodPost)
	sr.HandleFunc("/screenshot", s.handleScreenshot).Methods(http.MethodGet)
	sr.HandleFunc("/source", s.handleSource).Methods(http.MethodGet)
	sr.HandleFunc("/element", s.handleFindElement).Methods(http.MethodPost)
	sr.HandleFunc("/element/{eid}/displayed", s.handleElementState).Methods(http.MethodGet)
	sr.HandleFunc("/element/{eid}/enabled", s.handleElementState).Methods(http.MethodGet)
	sr.HandleFunc("/element/{eid}/text", s.handleElementState).Methods(http.MethodGet)
	sr.HandleFunc("/element/{eid}/click", s.handleClick).Methods(http.MethodPost)
	sr.HandleFunc("/element/{eid}/clear", s.handleClear).Methods(http.MethodPost)
	sr.HandleFunc("/element/{eid}/value", s.handleValue).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// Add registers a present, displayed and enabled element and returns it.
func (s *Server) Add(name, text string) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &Element{Name: name, Text: text, Present: true, Displayed: true, Enabled: true}
	s.elements[name] = e
	return e
}

// Update runs fn with the named element under the server lock.
// Unknown names are created as absent elements first.
func (s *Server) Update(name string, fn func(e *Element)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateLocked(name, fn)
}

func (s *Server) updateLocked(name string, fn func(e *Element)) {
	e, ok := s.elements[name]
	if !ok {
		e = &Element{Name: name}
		s.elements[name] = e
	}
	fn(e)
}

// Get returns a copy of the named element.
func (s *Server) Get(name string) (Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[name]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

// MarkStale invalidates every handle issued so far for the named element.
func (s *Server) MarkStale(name string) {
	s.Update(name, func(e *Element) { e.generation++ })
}

// OnClick installs a hook run (under the server lock) after the named element is clicked.
func (s *Server) OnClick(name string, fn func(s *Server)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClick[name] = fn
}

// Clicks returns how many clicks the named element received.
func (s *Server) Clicks(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[name]
}

// RejectSessions makes session creation fail with the given message.
func (s *Server) RejectSessions(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectWith = message
}

// RequireCapabilities makes session creation fail when any key is missing.
func (s *Server) RequireCapabilities(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.required = keys
}

// SetLatency delays every session command by d, as a stalled server would.
// A delayed request returns early when the client gives up on it.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Sessions returns the capability sets of all sessions created so far.
func (s *Server) Sessions() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]interface{}(nil), s.sessions...)
}

// Deleted returns how many DELETE /session calls succeeded.
func (s *Server) Deleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted
}

// ImplicitWait returns the last implicit timeout set by a client, in milliseconds.
func (s *Server) ImplicitWait() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.implicitMs, s.implicitSet
}

// Locked helpers for OnClick hooks.

// Show makes the named element present and displayed with the given text.
func (s *Server) Show(name, text string) {
	s.updateLocked(name, func(e *Element) {
		e.Present, e.Displayed, e.Enabled = true, true, true
		e.Text = text
	})
}

// Hide removes the named element from the view hierarchy.
func (s *Server) Hide(name string) {
	s.updateLocked(name, func(e *Element) {
		e.Present, e.Displayed = false, false
		e.generation++
	})
}

// After runs fn under the server lock once d has passed.
func (s *Server) After(d time.Duration, fn func(s *Server)) {
	time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn(s)
	})
}

// ValueOf returns the text typed into the named element.
func (s *Server) ValueOf(name string) string {
	if e, ok := s.elements[name]; ok {
		return e.Value
	}
	return ""
}

// Handlers

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"value": value})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		active, latency := s.sessionID, s.latency
		s.mu.Unlock()
		if active == "" || mux.Vars(r)["sid"] != active {
			writeError(w, http.StatusNotFound, "invalid session id", "session is either terminated or not started")
			return
		}
		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Capabilities struct {
			AlwaysMatch map[string]interface{} `json:"alwaysMatch"`
		} `json:"capabilities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}
	caps := body.Capabilities.AlwaysMatch

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectWith != "" {
		writeError(w, http.StatusInternalServerError, "session not created", s.rejectWith)
		return
	}
	for _, key := range s.required {
		if _, ok := caps[key]; !ok {
			writeError(w, http.StatusInternalServerError, "session not created",
				fmt.Sprintf("'%s' capability is required", key))
			return
		}
	}

	s.sessions = append(s.sessions, caps)
	s.sessionID = fmt.Sprintf("session-%d", len(s.sessions))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":    s.sessionID,
		"capabilities": caps,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.sessionID = ""
	s.deleted++
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleWindowRect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"x": 0, "y": 0, "width": 1080, "height": 2400})
}

func (s *Server) handleTimeouts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Implicit *int64 `json:"implicit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}
	if body.Implicit != nil {
		s.mu.Lock()
		s.implicitMs = *body.Implicit
		s.implicitSet = true
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, base64.StdEncoding.EncodeToString(ScreenshotPNG))
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	b.WriteString("<hierarchy>")
	for _, e := range s.elements {
		if e.Present {
			fmt.Fprintf(&b, `<node resource-id=%q text=%q displayed="%t"/>`, e.Name, e.Text, e.Displayed)
		}
	}
	b.WriteString("</hierarchy>")
	writeJSON(w, http.StatusOK, b.String())
}

func decodeLocator(r *http.Request) (string, error) {
	var body struct {
		Using string `json:"using"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", err
	}
	name := body.Value
	if i := strings.Index(name, ":id/"); i >= 0 {
		name = name[i+len(":id/"):]
	}
	return name, nil
}

func (s *Server) handleFindElement(w http.ResponseWriter, r *http.Request) {
	name, err := decodeLocator(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[name]
	if !ok || !e.Present {
		writeError(w, http.StatusNotFound, "no such element",
			"An element could not be located on the page using the given search parameters.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{w3cElementKey: e.handle()})
}

// lookupLocked resolves an element handle, writing the W3C error itself on failure.
func (s *Server) lookupLocked(w http.ResponseWriter, r *http.Request) (*Element, bool) {
	handle := mux.Vars(r)["eid"]
	name := handle
	if i := strings.LastIndex(handle, "~"); i >= 0 {
		name = handle[:i]
	}
	e, ok := s.elements[name]
	if !ok || !e.Present || e.handle() != handle {
		writeError(w, http.StatusNotFound, "stale element reference",
			"The element '"+handle+"' does not exist in DOM anymore")
		return nil, false
	}
	return e, true
}

func (s *Server) handleElementState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookupLocked(w, r)
	if !ok {
		return
	}
	switch {
	case strings.HasSuffix(r.URL.Path, "/displayed"):
		writeJSON(w, http.StatusOK, e.Displayed)
	case strings.HasSuffix(r.URL.Path, "/enabled"):
		writeJSON(w, http.StatusOK, e.Enabled)
	default:
		text := e.Text
		if e.Value != "" {
			text = e.Value
		}
		writeJSON(w, http.StatusOK, text)
	}
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookupLocked(w, r)
	if !ok {
		return
	}
	if !e.Displayed || !e.Enabled {
		writeError(w, http.StatusBadRequest, "element not interactable", "element is not interactable")
		return
	}
	s.clicks[e.Name]++
	if hook, ok := s.onClick[e.Name]; ok {
		hook(s)
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookupLocked(w, r)
	if !ok {
		return
	}
	e.Value = ""
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookupLocked(w, r)
	if !ok {
		return
	}
	e.Value += body.Text
	writeJSON(w, http.StatusOK, nil)
}
