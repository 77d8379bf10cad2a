package server

import (
	"encoding/json"
	"net/http"

	"github.com/prepflow/growth-engine/internal/vitals"
)

// VitalsRequest is one RUM sample reported by the page.
type VitalsRequest struct {
	Metrics   vitals.Metrics `json:"metrics"`
	Page      string         `json:"page"`
	PageType  string         `json:"pageType"`
	UserID    string         `json:"uid"`
	SessionID string         `json:"sid"`
}

type VitalsResponse struct {
	Success bool                `json:"success"`
	Budget  vitals.BudgetReport `json:"budget"`
	Alerts  []vitals.Alert      `json:"alerts,omitempty"`
}

func (s *Server) handleVitals(w http.ResponseWriter, r *http.Request) {
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

	var req VitalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Page == "" {
		req.Page = "/"
	}
	if req.PageType == "" {
		req.PageType = "default"
	}

	report := s.budgets.CheckBudget(req.Metrics, req.PageType)
	alerts := s.alerts.CheckPerformance(req.Metrics, req.Page, req.UserID, req.SessionID)
	s.recorder.RecordSample(req.Metrics, req.Page)
	for _, a := range alerts {
		s.recorder.Notify(a)
	}

	writeJSON(w, http.StatusOK, VitalsResponse{Success: true, Budget: report, Alerts: alerts})
}
