package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/opencup/cup-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// flexInt decodes a JSON number, a numeric string, an empty string, or null.
// Empty and null decode to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("cannot parse %q as integer", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// Result submissions come from clients that disagree on key spelling, so
// each field accepts its historical aliases and the first one present wins.
type goalEventRequest struct {
	TeamID            flexInt    `json:"team_id"`
	TeamIDCamel       flexInt    `json:"teamId"`
	ScorerPlayerID    flexInt    `json:"scorer_player_id"`
	ScorerPlayerCamel flexInt    `json:"scorerPlayerId"`
	ScorerID          flexInt    `json:"scorer_id"`
	ScorerIDCamel     flexInt    `json:"scorerId"`
	PlayerID          flexInt    `json:"player_id"`
	AssistPlayerID    *flexInt   `json:"assist_player_id"`
	AssistPlayerCamel *flexInt   `json:"assistPlayerId"`
	AssistID          *flexInt   `json:"assist_id"`
	AssistIDCamel     *flexInt   `json:"assistId"`
	Assist            *flexInt   `json:"assist"`
	Minute            flexString `json:"minute"`
	Min               flexString `json:"min"`
}

type participationRequest struct {
	TeamID        flexInt `json:"team_id"`
	TeamIDCamel   flexInt `json:"teamId"`
	PlayerID      flexInt `json:"player_id"`
	PlayerIDCamel flexInt `json:"playerId"`
}

type matchResultRequest struct {
	ScoreA      *flexInt `json:"score_a"`
	ScoreACamel *flexInt `json:"scoreA"`
	ScoreB      *flexInt `json:"score_b"`
	ScoreBCamel *flexInt `json:"scoreB"`

	GoalEvents      []goalEventRequest `json:"goal_events"`
	GoalEventsCamel []goalEventRequest `json:"goalEvents"`
	Goals           []goalEventRequest `json:"goals"`
	MatchGoalEvents []goalEventRequest `json:"match_goal_events"`

	Participations            []participationRequest `json:"participations"`
	PlayerParticipations      []participationRequest `json:"player_participations"`
	MatchPlayerParticipations []participationRequest `json:"match_player_participations"`
}

func firstInt(candidates ...*flexInt) (int, bool) {
	for _, c := range candidates {
		if c != nil {
			return int(*c), true
		}
	}
	return 0, false
}

func coalesceInt(candidates ...flexInt) int {
	for _, c := range candidates {
		if c != 0 {
			return int(c)
		}
	}
	return 0
}

func coalesceString(candidates ...flexString) string {
	for _, c := range candidates {
		if c != "" {
			return string(c)
		}
	}
	return ""
}

func firstEvents(candidates ...[]goalEventRequest) []goalEventRequest {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

func firstParticipations(candidates ...[]participationRequest) []participationRequest {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

func (req *matchResultRequest) toInput() (services.MatchResultInput, error) {
	var input services.MatchResultInput

	scoreA, okA := firstInt(req.ScoreA, req.ScoreACamel)
	scoreB, okB := firstInt(req.ScoreB, req.ScoreBCamel)
	if !okA || !okB {
		return input, fmt.Errorf("both scores are required")
	}
	input.ScoreA = scoreA
	input.ScoreB = scoreB

	for _, e := range firstEvents(req.GoalEvents, req.GoalEventsCamel, req.Goals, req.MatchGoalEvents) {
		event := services.GoalEventInput{
			TeamID:         coalesceInt(e.TeamID, e.TeamIDCamel),
			ScorerPlayerID: coalesceInt(e.ScorerPlayerID, e.ScorerPlayerCamel, e.ScorerID, e.ScorerIDCamel, e.PlayerID),
			Minute:         coalesceString(e.Minute, e.Min),
		}
		if assist, ok := firstInt(e.AssistPlayerID, e.AssistPlayerCamel, e.AssistID, e.AssistIDCamel, e.Assist); ok {
			event.AssistPlayerID = &assist
		}
		input.GoalEvents = append(input.GoalEvents, event)
	}

	for _, p := range firstParticipations(req.Participations, req.PlayerParticipations, req.MatchPlayerParticipations) {
		input.Participations = append(input.Participations, services.ParticipationInput{
			TeamID:   coalesceInt(p.TeamID, p.TeamIDCamel),
			PlayerID: coalesceInt(p.PlayerID, p.PlayerIDCamel),
		})
	}

	return input, nil
}

// GetByIDHandler handles GET /matches/{matchID}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGoalEventsHandler handles GET /matches/{matchID}/goal-events
func (h *MatchHandler) ListGoalEventsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	events, err := h.matchService.ListGoalEvents(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"goal_events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetResultHandler handles PUT|PATCH /matches/{matchID}/result
func (h *MatchHandler) SetResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req matchResultRequest
	if err := readJSONLoose(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SetResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
