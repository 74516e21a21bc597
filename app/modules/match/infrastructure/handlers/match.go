package matchhandlers

import (
	"net/http"
	"strconv"

	matchservice "github.com/Black-And-White-Club/kart-bot/app/modules/match/application"
	"github.com/Black-And-White-Club/kart-bot/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AllocateTeams previews a team split without storing anything.
func (h *MatchHandlers) AllocateTeams(w http.ResponseWriter, r *http.Request) {
	var req allocateTeamsRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := h.allocationMode(req.Mode)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.AllocateTeams(r.Context(), req.PlayerIDs, req.Teams, mode)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

// AllocateRaces previews the round lineups for teams given as player lists.
// The service looks up the players' ratings.
func (h *MatchHandlers) AllocateRaces(w http.ResponseWriter, r *http.Request) {
	var req allocateRacesRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.AllocateRaces(r.Context(), req.Teams, req.Rounds)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func (h *MatchHandlers) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.CreatePlayer(r.Context(), req.GroupID, req.Name)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusCreated, errorClasses)
}

func (h *MatchHandlers) SelectTracks(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "count must be an integer")
		return
	}

	result, err := h.service.SelectTracks(r.Context(), tournamentID, count)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func (h *MatchHandlers) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := h.allocationMode(req.Mode)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.CreateMatch(r.Context(), matchservice.CreateMatchRequest{
		TournamentID: req.TournamentID,
		PlayerIDs:    req.PlayerIDs,
		Rounds:       req.Rounds,
		TeamsPerRace: req.TeamsPerRace,
		Mode:         mode,
	})
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusCreated, errorClasses)
}

func (h *MatchHandlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := uuidParam(w, r, "matchID")
	if !ok {
		return
	}
	result, err := h.service.GetMatch(r.Context(), matchID)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func (h *MatchHandlers) RecordRoundResults(w http.ResponseWriter, r *http.Request) {
	matchID, ok := uuidParam(w, r, "matchID")
	if !ok {
		return
	}
	roundNumber, ok := roundParam(w, r)
	if !ok {
		return
	}
	var req recordResultsRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	submitted := make([]matchservice.PlayerResult, len(req.Results))
	for i, res := range req.Results {
		submitted[i] = matchservice.PlayerResult{PlayerID: res.PlayerID, Position: res.Position}
	}

	result, err := h.service.RecordRoundResults(r.Context(), matchID, roundNumber, submitted)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func (h *MatchHandlers) SwapRoundParticipant(w http.ResponseWriter, r *http.Request) {
	matchID, ok := uuidParam(w, r, "matchID")
	if !ok {
		return
	}
	roundNumber, ok := roundParam(w, r)
	if !ok {
		return
	}
	var req swapRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SwapRoundParticipant(r.Context(), matchID, roundNumber, req.OutPlayerID, req.InPlayerID)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func roundParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "roundNumber"))
	if err != nil || n <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid roundNumber")
		return 0, false
	}
	return n, true
}
