package server

import "net/http"

// defaultCountry is served when no CDN geo header is present.
const defaultCountry = "AU"

type CountryResponse struct {
	Success bool   `json:"success"`
	Country string `json:"country"`
	Source  string `json:"source"`
}

// handleDetectCountry resolves the visitor's country from the CDN geo
// headers most edges inject. There is no IP lookup fallback; an unknown
// origin gets the default market.
func (s *Server) handleDetectCountry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	for _, h := range []string{"CF-IPCountry", "X-Vercel-IP-Country", "X-Country-Code"} {
		if c := r.Header.Get(h); c != "" && c != "XX" {
			writeJSON(w, http.StatusOK, CountryResponse{Success: true, Country: c, Source: "header"})
			return
		}
	}
	writeJSON(w, http.StatusOK, CountryResponse{Success: true, Country: defaultCountry, Source: "default"})
}
