package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/robotomize/ratesboard"
	"github.com/robotomize/ratesboard/internal/logging"
	"github.com/robotomize/ratesboard/provider"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

type ratesResponse struct {
	Source    string            `json:"source"`
	Status    ratesboard.Status `json:"status"`
	UpdatedAt time.Time         `json:"updated_at"`
	Digest    string            `json:"digest"`
	Error     string            `json:"error,omitempty"`
	Rates     []provider.Rate   `json:"rates"`
}

type reportResponse struct {
	Source      string            `json:"source"`
	Status      ratesboard.Status `json:"status"`
	Error       string            `json:"error,omitempty"`
	AttemptedAt time.Time         `json:"attempted_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
	Digest      string            `json:"digest,omitempty"`
	Rates       int               `json:"rates"`
}

type errorResponse struct {
	Status ratesboard.Status `json:"status"`
	Error  string            `json:"error"`
}

func (s *Server) handleBoard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := s.board.WriteHTML(&buf); err != nil {
			logging.FromContext(r.Context()).Errorw("render board", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) handleRates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := s.board.LastReport()

		snap := s.board.Snapshot()
		if snap == nil {
			writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{
				Status: report.Status,
				Error:  strings.TrimSpace(ratesboard.UnavailableText + " " + report.ErrorMessage()),
			})
			return
		}

		etag := `"` + snap.Digest + `"`
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")

		if match := r.Header.Get("If-None-Match"); match != "" && etagMatch(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		writeJSON(w, r, http.StatusOK, ratesResponse{
			Source:    report.Source,
			Status:    report.Status,
			UpdatedAt: snap.UpdatedAt,
			Digest:    snap.Digest,
			Error:     report.ErrorMessage(),
			Rates:     snap.Rates,
		})
	}
}

func (s *Server) handleRefresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// a client hanging up must not abort a refresh shared with the board timers
		report := s.board.Refresh(context.WithoutCancel(r.Context()))

		resp := reportResponse{
			Source:      report.Source,
			Status:      report.Status,
			Error:       report.ErrorMessage(),
			AttemptedAt: report.Attempted,
		}

		if report.Snapshot != nil {
			updatedAt := report.Snapshot.UpdatedAt
			resp.UpdatedAt = &updatedAt
			resp.Digest = report.Snapshot.Digest
			resp.Rates = len(report.Snapshot.Rates)
		}

		status := http.StatusOK
		if report.Status == ratesboard.StatusUnavailable {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, r, status, resp)
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func etagMatch(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}

	return false
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Errorw("encode response", "error", err)
	}
}
