package handlers

import (
	"net/http"

	"alarm-clock-backend/internal/challenge"
)

// ChallengeHandler serves freshly generated challenges
type ChallengeHandler struct {
	random challenge.Source
}

// NewChallengeHandler creates a new challenge handler. A nil source uses the shared generator.
func NewChallengeHandler(random challenge.Source) *ChallengeHandler {
	if random == nil {
		random = challenge.DefaultSource
	}
	return &ChallengeHandler{random: random}
}

// GetChallenge handles GET /api/challenge?type=sentence|math
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	c := challenge.Generate(h.random, r.URL.Query().Get("type"))
	respondJSON(w, c, http.StatusOK)
}
