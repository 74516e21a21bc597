package tournamenthandlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	tournamentservice "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/application"
	"github.com/Black-And-White-Club/kart-bot/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Service is the part of the tournament service the HTTP API drives.
type Service interface {
	CreateTournament(ctx context.Context, req tournamentservice.CreateTournamentRequest) (tournamentservice.TournamentResult, error)
	GetTournament(ctx context.Context, tournamentID uuid.UUID) (tournamentservice.TournamentResult, error)
	CompleteTournament(ctx context.Context, tournamentID uuid.UUID) (tournamentservice.CompletionResult, error)
	ScheduleCompletion(ctx context.Context, tournamentID uuid.UUID, input string) (tournamentservice.ScheduleResult, error)
	GetLeaderboard(ctx context.Context, tournamentID uuid.UUID) (tournamentservice.LeaderboardResult, error)
	GetStats(ctx context.Context, tournamentID uuid.UUID) (tournamentservice.StatsResult, error)
	ExportStandings(ctx context.Context, tournamentID uuid.UUID) (tournamentservice.FileResult, error)
	RatingHistoryChart(ctx context.Context, tournamentID, playerID uuid.UUID) (tournamentservice.FileResult, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errorClasses = httpx.ErrorClasses{
	Validation: tournamentservice.ErrValidation,
	NotFound:   tournamentservice.ErrNotFound,
	Conflict:   tournamentservice.ErrConflict,
}

type TournamentHandlers struct {
	service Service
	logger  *slog.Logger
}

func NewTournamentHandlers(service Service, logger *slog.Logger) *TournamentHandlers {
	return &TournamentHandlers{service: service, logger: logger}
}

// Routes mounts the tournament API. Mutating routes get the write middlewares.
func (h *TournamentHandlers) Routes(r chi.Router, writeMiddlewares ...func(next http.Handler) http.Handler) {
	r.Get("/tournaments/{tournamentID}", h.GetTournament)
	r.Get("/tournaments/{tournamentID}/leaderboard", h.GetLeaderboard)
	r.Get("/tournaments/{tournamentID}/stats", h.GetStats)
	r.Get("/tournaments/{tournamentID}/export.xlsx", h.ExportStandings)
	r.Get("/tournaments/{tournamentID}/players/{playerID}/chart.png", h.RatingHistoryChart)

	r.Group(func(r chi.Router) {
		r.Use(writeMiddlewares...)
		r.Post("/tournaments", h.CreateTournament)
		r.Post("/tournaments/{tournamentID}/complete", h.CompleteTournament)
		r.Post("/tournaments/{tournamentID}/schedule", h.ScheduleCompletion)
	})
}

type scheduleRequest struct {
	When string `json:"when"`
}

type scheduleResponse struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	CloseAt      time.Time `json:"close_at"`
}

func (h *TournamentHandlers) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var req tournamentservice.CreateTournamentRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.service.CreateTournament(r.Context(), req)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusCreated, errorClasses)
}

func (h *TournamentHandlers) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	result, err := h.service.GetTournament(r.Context(), id)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

// CompleteTournament closes the tournament now instead of waiting for its
// scheduled end.
func (h *TournamentHandlers) CompleteTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	result, err := h.service.CompleteTournament(r.Context(), id)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func (h *TournamentHandlers) ScheduleCompletion(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	var req scheduleRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ScheduleCompletion(r.Context(), id, req.When)
	if err == nil && result.IsSuccess() {
		httpx.WriteJSON(w, http.StatusAccepted, scheduleResponse{TournamentID: id, CloseAt: *result.Success})
		return
	}
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusAccepted, errorClasses)
}

func (h *TournamentHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	result, err := h.service.GetLeaderboard(r.Context(), id)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func (h *TournamentHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	result, err := h.service.GetStats(r.Context(), id)
	httpx.WriteResult(w, r, h.logger, result, err, http.StatusOK, errorClasses)
}

func (h *TournamentHandlers) ExportStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	result, err := h.service.ExportStandings(r.Context(), id)
	h.writeFile(w, r, result, err, xlsxContentType, "standings-"+id.String()+".xlsx")
}

func (h *TournamentHandlers) RatingHistoryChart(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tournamentID")
	if !ok {
		return
	}
	playerID, ok := uuidParam(w, r, "playerID")
	if !ok {
		return
	}
	result, err := h.service.RatingHistoryChart(r.Context(), id, playerID)
	h.writeFile(w, r, result, err, "image/png", "")
}

func (h *TournamentHandlers) writeFile(w http.ResponseWriter, r *http.Request, result tournamentservice.FileResult, err error, contentType, filename string) {
	if err == nil && result.IsSuccess() {
		httpx.WriteFile(w, contentType, filename, *result.Success)
		return
	}
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
