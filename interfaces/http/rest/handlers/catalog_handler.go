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

// CatalogHandler handles catalog and rarity HTTP requests
type CatalogHandler struct {
	commandBus         *bus.CommandBus
	queryBus           *querybus.QueryBus
	defaultCatalogSize int
	errorHandler       *pkgerrors.ErrorHandler
	logger             *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	defaultCatalogSize int,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		commandBus:         commandBus,
		queryBus:           queryBus,
		defaultCatalogSize: defaultCatalogSize,
		errorHandler:       errorHandler,
		logger:             logger,
	}
}

// ListCollectables handles GET /collectables
func (h *CatalogHandler) ListCollectables(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListCollectablesQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ListRarities handles GET /rarities
func (h *CatalogHandler) ListRarities(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListRaritiesQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GenerateCatalogRequest represents the request body for catalog generation
type GenerateCatalogRequest struct {
	Count int `json:"count,omitempty" validate:"omitempty,gt=0,lte=10000"`
}

// GenerateCatalog handles POST /admin/catalog/generate. Admin only; the route
// is gated by RequireRole.
func (h *CatalogHandler) GenerateCatalog(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var req GenerateCatalogRequest
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

	count := req.Count
	if count == 0 {
		count = h.defaultCatalogSize
	}

	cmd := commands.GenerateCatalogCommand{
		Count:       count,
		RequestedBy: playerCtx.PlayerID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("catalog generation failed",
			zap.Int("count", count),
			zap.String("requestedBy", playerCtx.PlayerID),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Catalog generated",
		"count":   count,
	})
}
