package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	VoteeID           uuid.UUID `json:"votee_id"`
	Reason            string    `json:"reason"`
	HonorableMentions string    `json:"honorable_mentions"`
	Value             string    `json:"value"`
}

// VoteInSession casts a vote in the session named by the URL.
func (h *VoteHandler) VoteInSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.vote(w, r, sessionID)
}

// VoteInCurrentSession casts a vote in the newest open session.
func (h *VoteHandler) VoteInCurrentSession(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, 0)
}

func (h *VoteHandler) vote(w http.ResponseWriter, r *http.Request, sessionID int64) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VoteeID == uuid.Nil {
		writeError(w, r, domain.ErrInvalidUserID)
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	input := ports.VoteInput{
		VoterID:           userID,
		VoteeID:           req.VoteeID,
		Reason:            req.Reason,
		HonorableMentions: req.HonorableMentions,
		Value:             req.Value,
		SessionID:         sessionID,
	}

	if err := h.service.Vote(r.Context(), input); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	vote, err := h.service.MyVote(r.Context(), userID, sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vote)
}

// ListUserVotes returns a voter's history. Only the voter and admins can
// read it.
func (h *VoteHandler) ListUserVotes(w http.ResponseWriter, r *http.Request) {
	voterID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidUserID)
		return
	}

	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}
	if user.ID != voterID && !user.IsAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	history, err := h.service.ListByVoter(r.Context(), voterID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}
