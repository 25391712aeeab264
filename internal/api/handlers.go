package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/forecast"
	"github.com/comigor/creatorvault/internal/session"
	"github.com/comigor/creatorvault/internal/vault"
)

type handlers struct {
	deps RouterDependencies
}

func (h *handlers) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.deps.Registry.ListAssets(r.Context())
	if err != nil {
		RespondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, assets)
}

func (h *handlers) getAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.deps.Registry.GetAsset(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		RespondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, asset)
}

func (h *handlers) revenue(w http.ResponseWriter, r *http.Request) {
	points, err := h.deps.Registry.Revenue(r.Context())
	if err != nil {
		RespondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, points)
}

type forecastResponse struct {
	Months int               `json:"months"`
	Values []decimal.Decimal `json:"values"`
}

func (h *handlers) forecast(w http.ResponseWriter, r *http.Request) {
	points, err := h.deps.Registry.Revenue(r.Context())
	if err != nil {
		RespondErr(w, err)
		return
	}
	values, err := h.deps.Forecaster.Next(r.Context(), points)
	if err != nil {
		RespondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, forecastResponse{Months: forecast.Months, Values: values})
}

type startSessionRequest struct {
	AssetID string `json:"asset_id"`
}

func (h *handlers) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondErr(w, err)
		return
	}
	if req.AssetID == "" {
		RespondErr(w, apperr.InvalidInput("asset_id is required"))
		return
	}
	asset, err := h.deps.Registry.GetAsset(r.Context(), req.AssetID)
	if err != nil {
		RespondErr(w, err)
		return
	}
	s := h.deps.Sessions.Start(asset)
	RespondJSON(w, http.StatusCreated, renderSession(s))
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.deps.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		RespondErr(w, err)
		return nil, false
	}
	return s, true
}

func (h *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, renderSession(s))
}

func (h *handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Sessions.End(chi.URLParam(r, "sessionID")); err != nil {
		RespondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type postMessageRequest struct {
	Text string `json:"text"`
}

type postMessageResponse struct {
	Accepted bool            `json:"accepted"`
	Outcome  session.Outcome `json:"outcome"`
	Session  sessionView     `json:"session"`
}

// postMessage blocks until the negotiator answers or fails. A submission
// refused because the session is busy or offline is not an error.
func (h *handlers) postMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req postMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondErr(w, err)
		return
	}
	outcome, err := s.Submit(r.Context(), req.Text)
	if err != nil {
		RespondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, postMessageResponse{
		Accepted: outcome != session.OutcomeRejected,
		Outcome:  outcome,
		Session:  renderSession(s),
	})
}

type reconnectResponse struct {
	Reconnected bool        `json:"reconnected"`
	Session     sessionView `json:"session"`
}

func (h *handlers) reconnect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	done, err := s.Reconnect(r.Context())
	if err != nil {
		RespondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, reconnectResponse{Reconnected: done, Session: renderSession(s)})
}

type contractResponse struct {
	Source  string `json:"source,omitempty"`
	Summary string `json:"summary,omitempty"`
}

func (h *handlers) contractSample(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, contractResponse{Source: vault.SampleContract})
}

type summarizeRequest struct {
	Source string `json:"source"`
}

func (h *handlers) summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondErr(w, err)
		return
	}
	summary, err := h.deps.Summarizer.Summarize(r.Context(), req.Source)
	if err != nil {
		RespondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, contractResponse{Summary: summary})
}
