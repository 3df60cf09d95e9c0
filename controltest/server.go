// Package controltest is an in-process fake of the local sidecar's control
// plane, used only by control and allocation package tests so they never
// need a real sidecar listening on localhost.
package controltest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// Script lets a test program the fake server's responses before starting
// it. Zero-value fields mean "respond 200 with an empty body" for the
// corresponding endpoint.
type Script struct {
	ReadyStatus   int
	ReadyBody     any
	UnreadyStatus int
	UnreadyBody   any

	PayloadAllocationStatus int
	PayloadAllocationBody   any // string for success, error struct for failure

	PayloadTokenStatus int
	PayloadTokenBody   any
}

// Server is a fake control plane backed by httptest.Server. Requests
// received are recorded for assertions.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	script   Script
	requests []*http.Request
}

// New starts a fake control plane responding per script.
func New(script Script) *Server {
	s := &Server{script: script}

	r := mux.NewRouter()
	r.HandleFunc("/v1/ready", s.handle(func() (int, any) { return s.script.ReadyStatus, s.script.ReadyBody })).Methods(http.MethodPost)
	r.HandleFunc("/v1/unready", s.handle(func() (int, any) { return s.script.UnreadyStatus, s.script.UnreadyBody })).Methods(http.MethodPost)
	r.HandleFunc("/v1/payload/token", s.handle(func() (int, any) { return s.script.PayloadTokenStatus, s.script.PayloadTokenBody })).Methods(http.MethodGet)
	r.HandleFunc("/v1/payload/{allocationId}", s.handle(func() (int, any) { return s.script.PayloadAllocationStatus, s.script.PayloadAllocationBody })).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	return s
}

// SetScript replaces the response script for subsequent requests.
func (s *Server) SetScript(script Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
}

// Requests returns every request the fake server has received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*http.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(pick func() (int, any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r)
		s.mu.Unlock()

		status, body := pick()
		if status == 0 {
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)

		switch v := body.(type) {
		case nil:
		case string:
			_, _ = w.Write([]byte(v))
		default:
			_ = json.NewEncoder(w).Encode(v)
		}
	}
}
