package handlers

import (
	"net/http"

	"github.com/google/uuid"
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

// ScanHandler handles barcode scan requests. Scans carry their own per-player
// rate limit, tighter than the general request limit, because each scan mints
// an item.
type ScanHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	scanLimiter  auth.RateLimiter
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	scanLimiter auth.RateLimiter,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ScanHandler {
	return &ScanHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		scanLimiter:  scanLimiter,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ScanRequest represents the request body for a barcode scan
type ScanRequest struct {
	Barcode string `json:"barcode" validate:"required,min=4,max=64"`
}

// Scan handles POST /scans. A successful scan rolls a new item into the
// caller's collection and returns it.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	allowed, err := h.scanLimiter.Allow(r.Context(), playerCtx.PlayerID)
	if err != nil {
		// The limiter fails open on store errors; log and keep serving
		h.logger.Warn("scan rate limiter error", zap.Error(err))
	}
	if !allowed {
		common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Scan rate limit exceeded")
		return
	}

	var req ScanRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	itemID := uuid.New().String()

	cmd := commands.RollItemCommand{
		ItemID:   itemID,
		PlayerID: playerCtx.PlayerID,
		Barcode:  req.Barcode,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("scan failed",
			zap.String("playerID", playerCtx.PlayerID),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetItemQuery{ItemID: itemID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}
