package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prepflow/growth-engine/internal/abtest"
)

type HealthResponse struct {
	Status        string `json:"status"`
	TestsCount    int    `json:"tests_count"`
	EventsCount   int    `json:"events_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		Status:        "ok",
		TestsCount:    len(s.analytics.Registry().List()),
		EventsCount:   s.analytics.Tracker().Len(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}
	writeJSON(w, http.StatusOK, resp)
}

// BeaconRequest is one tracked event from the page. Field names are kept
// short since beacons ride on sendBeacon payload limits.
type BeaconRequest struct {
	TestID    string         `json:"t"`
	EventType string         `json:"e"`
	UserID    string         `json:"uid"`
	SessionID string         `json:"sid"`
	Value     float64        `json:"v"`
	Page      string         `json:"page"`
	Metadata  map[string]any `json:"meta"`
}

func (s *Server) handleBeacon(w http.ResponseWriter, r *http.Request) {
	// Beacons arrive cross-origin from the landing pages.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BeaconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.TestID == "" || req.UserID == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	eventType := abtest.EventType(req.EventType)
	if !eventType.Valid() {
		http.Error(w, "Invalid event type", http.StatusBadRequest)
		return
	}

	variantID := ""
	switch eventType {
	case abtest.EventPageView:
		s.analytics.TrackPageView(req.TestID, req.UserID, req.Page)
		variantID = s.analytics.AssignVariant(req.TestID, req.UserID)
	case abtest.EventConversion:
		s.analytics.TrackConversion(req.TestID, req.UserID, req.Value, req.Metadata)
		variantID = s.analytics.AssignVariant(req.TestID, req.UserID)
	case abtest.EventEngagement:
		engagementType, _ := req.Metadata["engagement_type"].(string)
		s.analytics.TrackEngagement(req.TestID, req.UserID, engagementType, req.Metadata)
		variantID = s.analytics.AssignVariant(req.TestID, req.UserID)
	case abtest.EventVariantAssigned:
		// Assignment is server-owned; the beacon only needs to ask.
		variantID = s.analytics.AssignVariant(req.TestID, req.UserID)
	}

	s.eventsTotal.WithLabelValues(req.EventType).Inc()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "variantId": variantID})
}

func (s *Server) handleTests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.analytics.Registry().List())
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	testID := r.URL.Query().Get("test")
	if testID == "" {
		http.Error(w, "Missing test parameter", http.StatusBadRequest)
		return
	}

	results, err := s.analytics.TestResults(testID)
	if err != nil {
		http.Error(w, "Test not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	testID := r.URL.Query().Get("test")
	if testID == "" {
		http.Error(w, "Missing test parameter", http.StatusBadRequest)
		return
	}
	if s.analytics.Registry().Get(testID) == nil {
		http.Error(w, "Test not found", http.StatusNotFound)
		return
	}

	events := s.analytics.Tracker().EventsForTest(testID)
	if events == nil {
		events = []abtest.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
