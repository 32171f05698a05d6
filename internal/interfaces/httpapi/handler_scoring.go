package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/hooplabs/courtside/internal/domain/stats"
	"github.com/hooplabs/courtside/internal/usecase"
)

func (h *Handler) RecordPoint(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordPoint")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	var req recordPointRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ledger, err := h.scoringService.RecordPoint(ctx, gameID, req.PlayerID, stats.PointValue(req.Value))
	if err != nil {
		h.logger.WarnContext(ctx, "record point failed", "game_id", gameID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatToDTO(ledger))
}

func (h *Handler) UndoLastPoint(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoLastPoint")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	var req undoPointRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	ledger, err := h.scoringService.UndoLastPoint(ctx, gameID, req.PlayerID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatToDTO(ledger))
}

func (h *Handler) IncrementCounter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IncrementCounter")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	var req counterMutationRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ledger, err := h.scoringService.IncrementCounterStat(ctx, gameID, req.PlayerID, stats.CounterStat(req.Stat))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatToDTO(ledger))
}

func (h *Handler) DecrementCounter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DecrementCounter")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	var req counterMutationRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ledger, err := h.scoringService.DecrementCounterStat(ctx, gameID, req.PlayerID, stats.CounterStat(req.Stat))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatToDTO(ledger))
}

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	ledger, err := h.scoringService.PlayerStat(ctx, gameID, playerID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatToDTO(ledger))
}

func (h *Handler) GetTeamTotals(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamTotals")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	home, away, err := h.scoringService.TeamTotals(ctx, gameID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamTotalsDTO{
		Home: teamStatToDTO(home),
		Away: teamStatToDTO(away),
	})
}
