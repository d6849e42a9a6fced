// Package handlers contains the HTTP request handlers for the REST API.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/application/commands/bus"
	"scandex-backend/application/queries"
	querybus "scandex-backend/application/queries/bus"
	"scandex-backend/pkg/auth"
	"scandex-backend/pkg/common"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/utils"
)

const maxBodyBytes = 64 * 1024

// PlayerHandler handles player-related HTTP requests
type PlayerHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PlayerHandler {
	return &PlayerHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RegisterPlayerRequest represents the request body for registering
type RegisterPlayerRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=60"`
}

// Register handles POST /players/register. Identity comes from the validated
// credential, never from the body; registering twice is a no-op.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var req RegisterPlayerRequest
	if r.ContentLength > 0 {
		if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
			common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	cmd := commands.RegisterPlayerCommand{
		PlayerID:    playerCtx.PlayerID,
		Email:       playerCtx.Email,
		DisplayName: req.DisplayName,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetPlayerQuery{PlayerID: playerCtx.PlayerID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// GetMe handles GET /players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetPlayerQuery{PlayerID: playerCtx.PlayerID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
