package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// LeadRequest is a captured lead from one of the landing forms.
type LeadRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Source string `json:"source"`
	UserID string `json:"uid"`
}

type LeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, LeadResponse{Success: false, Message: "invalid request body"})
		return
	}
	if !validEmail(req.Email) {
		writeJSON(w, http.StatusBadRequest, LeadResponse{Success: false, Message: "a valid email is required"})
		return
	}

	// A captured lead is a conversion on the landing experiment.
	if req.UserID != "" && s.cfg.Leads.ConversionTest != "" {
		s.analytics.TrackConversion(s.cfg.Leads.ConversionTest, req.UserID, 1, map[string]any{
			"conversion_type": "lead_capture",
			"source":          req.Source,
		})
	}
	s.leadsTotal.Inc()

	// Forward fire-and-forget; a dropped webhook never fails the form.
	if url := s.cfg.Leads.WebhookURL; url != "" {
		go s.forwardLead(url, req)
	}

	writeJSON(w, http.StatusOK, LeadResponse{Success: true, Message: "lead captured"})
}

func (s *Server) forwardLead(url string, lead LeadRequest) {
	body, err := json.Marshal(lead)
	if err != nil {
		return
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		s.log.WithError(err).Warn("lead forwarding failed")
		return
	}
	resp.Body.Close()
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	dot := strings.LastIndex(email, ".")
	return at > 0 && dot > at+1 && dot < len(email)-1
}
