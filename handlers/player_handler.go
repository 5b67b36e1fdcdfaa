package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/opencup/cup-system/models"
	"github.com/opencup/cup-system/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

type playerRequest struct {
	TeamID      int        `json:"team_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Number      *int       `json:"number"`
	Nationality *string    `json:"nationality"`
	Role        *string    `json:"role"`
	HeightCM    *int       `json:"height_cm"`
	WeightKG    *int       `json:"weight_kg"`
	BirthDate   *time.Time `json:"birth_date"`
}

func (req *playerRequest) toInput() services.PlayerInput {
	return services.PlayerInput{
		TeamID:      req.TeamID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Number:      req.Number,
		Nationality: req.Nationality,
		Role:        req.Role,
		HeightCM:    req.HeightCM,
		WeightKG:    req.WeightKG,
		BirthDate:   req.BirthDate,
	}
}

// ListHandler handles GET /players, optionally filtered with ?team_id=
func (h *PlayerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var (
		players []models.Player
		err     error
	)
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		teamID, convErr := strconv.Atoi(raw)
		if convErr != nil || teamID < 1 {
			badRequestResponse(w, r, errors.New("invalid team_id parameter"))
			return
		}
		players, err = h.playerService.ListByTeam(r.Context(), teamID)
	} else {
		players, err = h.playerService.List(r.Context())
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /players/{playerID}
func (h *PlayerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler handles POST /players
func (h *PlayerHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), req.toInput())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /players/{playerID}
func (h *PlayerHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req playerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), id, req.toInput())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadAvatarHandler handles POST /players/{playerID}/avatar (multipart, field "avatar")
func (h *PlayerHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := parseUploadedFile(r, "avatar")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	player, err := h.playerService.UploadAvatar(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /players/{playerID}
func (h *PlayerHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
