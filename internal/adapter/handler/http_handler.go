package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
)

const defaultTransferLimit = 50

type HTTPHandler struct {
	inventoryService *service.InventoryService
	logger           *slog.Logger
}

func NewHTTPHandler(inventoryService *service.InventoryService, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{inventoryService: inventoryService, logger: logger}
}

// Router builds the mux router with every API route and request logging.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/api/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products", h.CreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id:[0-9]+}", h.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id:[0-9]+}", h.UpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/api/products/{id:[0-9]+}", h.DeleteProduct).Methods(http.MethodDelete)

	r.HandleFunc("/api/warehouses", h.ListWarehouses).Methods(http.MethodGet)
	r.HandleFunc("/api/warehouses", h.CreateWarehouse).Methods(http.MethodPost)
	r.HandleFunc("/api/warehouses/{id:[0-9]+}", h.GetWarehouse).Methods(http.MethodGet)
	r.HandleFunc("/api/warehouses/{id:[0-9]+}", h.UpdateWarehouse).Methods(http.MethodPut)
	r.HandleFunc("/api/warehouses/{id:[0-9]+}", h.DeleteWarehouse).Methods(http.MethodDelete)
	r.HandleFunc("/api/warehouses/{id:[0-9]+}/load", h.WarehouseLoad).Methods(http.MethodGet)

	r.HandleFunc("/api/inventory/transfer", h.Transfer).Methods(http.MethodPost)
	r.HandleFunc("/api/inventory/transfers", h.ListTransfers).Methods(http.MethodGet)
	r.HandleFunc("/api/inventory", h.ListInventory).Methods(http.MethodGet)
	r.HandleFunc("/api/inventory", h.CreateInventory).Methods(http.MethodPost)
	r.HandleFunc("/api/inventory/{id:[0-9]+}", h.GetInventory).Methods(http.MethodGet)
	r.HandleFunc("/api/inventory/{id:[0-9]+}", h.UpdateInventory).Methods(http.MethodPut)
	r.HandleFunc("/api/inventory/{id:[0-9]+}", h.DeleteInventory).Methods(http.MethodDelete)

	r.HandleFunc("/api/dashboard", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/health", h.HealthCheck).Methods(http.MethodGet)
	return r
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventoryService.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]ProductJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.inventoryService.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(p))
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.inventoryService.CreateProduct(r.Context(), domain.Product{
		Name: req.Name, SKU: req.SKU, Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductJSON(p))
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.inventoryService.UpdateProduct(r.Context(), id, domain.Product{
		Name: req.Name, SKU: req.SKU, Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(p))
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.inventoryService.ListWarehouses(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]WarehouseJSON, 0, len(warehouses))
	for _, wh := range warehouses {
		out = append(out, toWarehouseJSON(wh))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	wh, err := h.inventoryService.GetWarehouse(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseJSON(wh))
}

func (h *HTTPHandler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req WarehouseRequest
	if !h.decode(w, r, &req) {
		return
	}
	wh, err := h.inventoryService.CreateWarehouse(r.Context(), domain.Warehouse{
		Name: req.Name, Location: req.Location, MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWarehouseJSON(wh))
}

func (h *HTTPHandler) UpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req WarehouseRequest
	if !h.decode(w, r, &req) {
		return
	}
	wh, err := h.inventoryService.UpdateWarehouse(r.Context(), id, domain.Warehouse{
		Name: req.Name, Location: req.Location, MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseJSON(wh))
}

func (h *HTTPHandler) DeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "force must be a boolean"})
			return
		}
		force = parsed
	}
	if err := h.inventoryService.DeleteWarehouse(r.Context(), id, force); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) WarehouseLoad(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	load, err := h.inventoryService.WarehouseLoad(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseLoadJSON(load))
}

func (h *HTTPHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.inventoryService.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	refs := newRefs(snapshot.Products, snapshot.Warehouses)
	writeJSON(w, http.StatusOK, refs.inventoryList(snapshot.Inventory))
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.inventoryService.GetInventory(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.inventoryJSON(r.Context(), rec))
}

func (h *HTTPHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.inventoryService.CreateInventory(r.Context(), req.Record())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.inventoryJSON(r.Context(), rec))
}

func (h *HTTPHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req InventoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.inventoryService.UpdateInventory(r.Context(), id, req.Patch())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.inventoryJSON(r.Context(), rec))
}

func (h *HTTPHandler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteInventory(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.inventoryService.Transfer(r.Context(), req.Domain())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransferResponse(res))
}

func (h *HTTPHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	limit := defaultTransferLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = l
	}
	transfers, err := h.inventoryService.ListTransfers(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]TransferJSON, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, toTransferJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.inventoryService.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardJSON(d))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// inventoryJSON embeds the product and warehouse of one record. A failed
// lookup only leaves the names empty.
func (h *HTTPHandler) inventoryJSON(ctx context.Context, rec domain.InventoryRecord) InventoryJSON {
	var products []domain.Product
	var warehouses []domain.Warehouse
	if p, err := h.inventoryService.GetProduct(ctx, rec.ProductID); err == nil {
		products = append(products, p)
	} else {
		h.logger.Warn("failed to load product reference", "product_id", rec.ProductID, "error", err)
	}
	if w, err := h.inventoryService.GetWarehouse(ctx, rec.WarehouseID); err == nil {
		warehouses = append(warehouses, w)
	} else {
		h.logger.Warn("failed to load warehouse reference", "warehouse_id", rec.WarehouseID, "error", err)
	}
	return newRefs(products, warehouses).inventory(rec)
}

func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		writeJSON(w, status, ErrorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidTransfer):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
