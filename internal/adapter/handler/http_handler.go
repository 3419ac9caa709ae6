package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

// InventoryService is the slice of the mutation engine the HTTP
// boundary needs.
type InventoryService interface {
	RegisterInventory(ctx context.Context, productID string, delta int, description string) error
	GetStock(ctx context.Context, productID string) (*domain.ProductStock, error)
	GetMovements(ctx context.Context, productID string) ([]domain.MovementRecord, error)
}

type HTTPHandler struct {
	inventory InventoryService
	validate  *validator.Validate
	logger    *logrus.Logger
}

type RegisterInventoryRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description" validate:"max=500"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewHTTPHandler(inventory InventoryService, logger *logrus.Logger) *HTTPHandler {
	return &HTTPHandler{
		inventory: inventory,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Register binds the inventory routes onto mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/inventory", h.RegisterInventory)
	mux.HandleFunc("GET /api/inventory/{id}/stock", h.GetStock)
	mux.HandleFunc("GET /api/inventory/{id}/movements", h.GetMovements)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

func (h *HTTPHandler) RegisterInventory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, CapabilityInventoryWrite) {
		return
	}

	var req RegisterInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{Success: false, Message: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{Success: false, Message: err.Error()})
		return
	}

	err := h.inventory.RegisterInventory(r.Context(), req.ProductID, req.Quantity, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "inventory registered"})
}

func (h *HTTPHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, CapabilityInventoryRead) {
		return
	}

	stock, err := h.inventory.GetStock(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

func (h *HTTPHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, CapabilityInventoryRead) {
		return
	}

	movements, err := h.inventory.GetMovements(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if movements == nil {
		movements = []domain.MovementRecord{}
	}
	writeJSON(w, http.StatusOK, movements)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorize checks the caller's role header against the capability
// table. Authentication itself lives upstream; the header is trusted.
func (h *HTTPHandler) authorize(w http.ResponseWriter, r *http.Request, capability Capability) bool {
	role := r.Header.Get("X-Api-Role")
	if !Authorized(role, capability) {
		writeJSON(w, http.StatusForbidden, StatusResponse{Success: false, Message: "forbidden"})
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, StatusResponse{Success: false, Message: "inventory not found"})
	case errors.Is(err, domain.ErrInsufficientStock):
		writeJSON(w, http.StatusBadRequest, StatusResponse{Success: false, Message: "insufficient stock"})
	default:
		h.logger.WithField("path", r.URL.Path).WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, StatusResponse{Success: false, Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
