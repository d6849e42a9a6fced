package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scandex-backend/application/queries"
	querybus "scandex-backend/application/queries/bus"
	"scandex-backend/pkg/auth"
	"scandex-backend/pkg/common"
	pkgerrors "scandex-backend/pkg/errors"
)

// ItemHandler handles item-related HTTP requests
type ItemHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ItemHandler {
	return &ItemHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ListItems handles GET /items, returning the caller's collection
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	playerCtx, err := auth.GetPlayerFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListItemsQuery{PlayerID: playerCtx.PlayerID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetItem handles GET /items/{itemID}. Any authenticated player may inspect
// an item, which is how the requested side of a trade offer gets reviewed.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if _, err := uuid.Parse(itemID); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item ID format")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetItemQuery{ItemID: itemID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
