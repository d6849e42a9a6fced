package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/application/commands/bus"
	"scandex-backend/application/ports"
	"scandex-backend/application/queries"
	querybus "scandex-backend/application/queries/bus"
	"scandex-backend/pkg/auth"
	"scandex-backend/pkg/common"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/utils"
)

// TradeHandler handles trade-related HTTP requests
type TradeHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *TradeHandler {
	return &TradeHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateTradeRequest represents the request body for opening a trade offer
type CreateTradeRequest struct {
	ToPlayerID       string   `json:"to_player_id" validate:"required,uuid4"`
	OfferedItemIDs   []string `json:"offered_item_ids" validate:"required,min=1,max=10,dive,uuid4"`
	RequestedItemIDs []string `json:"requested_item_ids" validate:"required,min=1,max=10,dive,uuid4"`
}

// CreateTrade handles POST /trades. The caller is always the offering side.
func (h *TradeHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var req CreateTradeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.ToPlayerID == playerCtx.PlayerID {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Cannot open a trade with yourself")
		return
	}

	tradeID := uuid.New().String()

	cmd := commands.CreateTradeCommand{
		TradeID:          tradeID,
		FromPlayerID:     playerCtx.PlayerID,
		ToPlayerID:       req.ToPlayerID,
		OfferedItemIDs:   req.OfferedItemIDs,
		RequestedItemIDs: req.RequestedItemIDs,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("trade creation failed",
			zap.String("fromPlayerID", playerCtx.PlayerID),
			zap.String("toPlayerID", req.ToPlayerID),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondWithTrade(w, r, tradeID, playerCtx.PlayerID, http.StatusCreated)
}

// ListTrades handles GET /trades?direction=incoming|outgoing|all
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	direction := ports.TradeDirection(r.URL.Query().Get("direction"))
	if direction == "" {
		direction = ports.TradeDirectionAll
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListTradesQuery{
		PlayerID:  playerCtx.PlayerID,
		Direction: direction,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetTrade handles GET /trades/{tradeID}
func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tradeID := chi.URLParam(r, "tradeID")
	if _, err := uuid.Parse(tradeID); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid trade ID format")
		return
	}

	h.respondWithTrade(w, r, tradeID, playerCtx.PlayerID, http.StatusOK)
}

// AcceptTrade handles POST /trades/{tradeID}/accept
func (h *TradeHandler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "accept")
}

// RejectTrade handles POST /trades/{tradeID}/reject
func (h *TradeHandler) RejectTrade(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "reject")
}

// CancelTrade handles POST /trades/{tradeID}/cancel
func (h *TradeHandler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "cancel")
}

// resolve dispatches a trade resolution. Permission checks live in the
// domain: accept and reject belong to the receiving player, cancel to the
// offering player.
func (h *TradeHandler) resolve(w http.ResponseWriter, r *http.Request, action string) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tradeID := chi.URLParam(r, "tradeID")
	if _, err := uuid.Parse(tradeID); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid trade ID format")
		return
	}

	var cmd bus.Command
	switch action {
	case "accept":
		cmd = commands.AcceptTradeCommand{TradeID: tradeID, CallerID: playerCtx.PlayerID}
	case "reject":
		cmd = commands.RejectTradeCommand{TradeID: tradeID, CallerID: playerCtx.PlayerID}
	case "cancel":
		cmd = commands.CancelTradeCommand{TradeID: tradeID, CallerID: playerCtx.PlayerID}
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("trade resolution failed",
			zap.String("tradeID", tradeID),
			zap.String("action", action),
			zap.String("callerID", playerCtx.PlayerID),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondWithTrade(w, r, tradeID, playerCtx.PlayerID, http.StatusOK)
}

func (h *TradeHandler) respondWithTrade(w http.ResponseWriter, r *http.Request, tradeID, callerID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetTradeQuery{
		TradeID:  tradeID,
		CallerID: callerID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, status, result)
}
