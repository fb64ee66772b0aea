package api

import (
	"net/http"

	"github.com/seenimoa/valuescreen/internal/config"
	"github.com/seenimoa/valuescreen/internal/valuation"
)

// ConfigResponse is the JSON body returned by GET /api/v1/config.
// Secrets are never included; use /config/keys for their status.
type ConfigResponse struct {
	Valuation valuation.Parameters `json:"valuation"`
	Provider  ProviderView         `json:"provider"`
}

// ProviderView is the non-sensitive part of the provider configuration.
type ProviderView struct {
	Primary   string `json:"primary"`
	Fallback  string `json:"fallback,omitempty"`
	CacheTTL  int    `json:"cache_ttl"`
	RateLimit int    `json:"rate_limit"`
	Timeout   int    `json:"timeout"`
	NewsLimit int    `json:"news_limit"`
}

// handleGetConfig returns the valuation defaults and provider settings the
// server is running with.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	p := s.cfg.Provider
	view := ProviderView{
		Primary:   p.Primary,
		CacheTTL:  p.CacheTTL,
		RateLimit: p.RateLimit,
		Timeout:   p.Timeout,
		NewsLimit: p.NewsLimit,
	}
	if p.HasFallback() {
		view.Fallback = p.Fallback
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Valuation: s.cfg.Valuation.Parameters(),
			Provider:  view,
		},
	})
}

// handleGetConfigKeys returns the status of all sensitive API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
