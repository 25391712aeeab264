package api

import (
	"github.com/comigor/creatorvault/internal/history"
	"github.com/comigor/creatorvault/internal/negotiation"
	"github.com/comigor/creatorvault/internal/session"
)

type messageView struct {
	history.Message
	// AgreementPrepared is derived from the content on every render.
	AgreementPrepared bool `json:"agreement_prepared"`
}

type sessionView struct {
	ID           string               `json:"id"`
	AssetID      string               `json:"asset_id"`
	AssetName    string               `json:"asset_name"`
	State        session.State        `json:"state"`
	Connectivity session.Connectivity `json:"connectivity"`
	Pending      bool                 `json:"pending"`
	Messages     []messageView        `json:"messages"`
}

func renderSession(s *session.Session) sessionView {
	msgs := s.Messages()
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{
			Message:           m,
			AgreementPrepared: m.Role == history.RoleAgent && negotiation.Accepted(m.Content),
		})
	}
	state := s.State()
	return sessionView{
		ID:           s.ID,
		AssetID:      s.Asset.ID,
		AssetName:    s.Asset.Name,
		State:        state,
		Connectivity: s.Connectivity(),
		Pending:      state == session.StatePending,
		Messages:     views,
	}
}
