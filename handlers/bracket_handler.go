package handlers

import (
	"net/http"

	"github.com/opencup/cup-system/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// GenerateHandler handles POST /tournaments/{tournamentID}/bracket
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.Generate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler handles GET /tournaments/{tournamentID}/bracket
func (h *BracketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Pairing fixup items arrive with the match id under several keys.
type pairingUpdateRequest struct {
	MatchID      flexInt `json:"match_id"`
	MatchIDCamel flexInt `json:"matchId"`
	ID           flexInt `json:"id"`
	TeamAID      *int    `json:"team_a_id"`
	TeamBID      *int    `json:"team_b_id"`
}

type updatePairingsRequest struct {
	Matches []pairingUpdateRequest `json:"matches"`
}

// UpdatePairingsHandler handles PUT|PATCH /tournaments/{tournamentID}/matches
func (h *BracketHandler) UpdatePairingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req updatePairingsRequest
	if err := readJSONLoose(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updates := make([]services.PairingUpdate, 0, len(req.Matches))
	for _, item := range req.Matches {
		updates = append(updates, services.PairingUpdate{
			MatchID: coalesceInt(item.MatchID, item.MatchIDCamel, item.ID),
			TeamAID: item.TeamAID,
			TeamBID: item.TeamBID,
		})
	}

	view, err := h.bracketService.UpdatePairings(r.Context(), id, updates)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGoalEventsHandler handles GET /tournaments/{tournamentID}/goal-events
func (h *BracketHandler) ListGoalEventsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	events, err := h.bracketService.ListGoalEvents(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"goal_events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayersHandler handles GET /tournaments/{tournamentID}/players
func (h *BracketHandler) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.bracketService.ListPlayers(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
