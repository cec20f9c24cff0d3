package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shopfront/internal/domain"
	"shopfront/internal/middleware"
	"shopfront/internal/service"
)

// AddToCartRequest represents the add-to-cart request payload
type AddToCartRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// RestockRequest represents the restock request payload
type RestockRequest struct {
	Units int `json:"units" validate:"gte=0"`
}

// AddToCartResponse reports whether a line was appended. Added is false when
// the clamp against available stock reduced the quantity to zero.
type AddToCartResponse struct {
	Added   bool             `json:"added"`
	Line    *domain.CartLine `json:"line,omitempty"`
	Message string           `json:"message,omitempty"`
}

// CartResponse is the open cart with its running totals.
type CartResponse struct {
	Lines         []domain.CartLine `json:"lines"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	ServiceCharge decimal.Decimal   `json:"service_charge"`
	Tax           decimal.Decimal   `json:"tax"`
	GrandTotal    decimal.Decimal   `json:"grand_total"`
}

// ShopHandler handles HTTP requests for the storefront
type ShopHandler struct {
	shopService service.ShopService
	logger      *zap.Logger
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService service.ShopService, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
		logger:      logger,
	}
}

// RegisterRoutes registers all storefront routes. Cashier endpoints are
// wrapped with the given role-gate middleware.
func (h *ShopHandler) RegisterRoutes(r chi.Router, cashierOnly func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		// Customer surface
		r.Get("/catalog", h.GetCatalog)
		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddToCart)
		r.Delete("/cart", h.ClearCart)
		r.Post("/checkout", h.Checkout)

		// Cashier surface
		r.Group(func(r chi.Router) {
			r.Use(cashierOnly)
			r.Post("/items/{id}/restock", h.Restock)
			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}/text", h.GetReceiptText)
		})
	})
}

// GetCatalog returns the catalog with current effective prices
func (h *ShopHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	view := h.shopService.CatalogView(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// GetCart returns the open cart and its running totals
func (h *ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary := h.shopService.CartView(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Lines:         summary.Lines,
		Subtotal:      summary.Subtotal,
		ServiceCharge: summary.ServiceCharge,
		Tax:           summary.Tax,
		GrandTotal:    summary.GrandTotal,
	})
}

// AddToCart appends a line to the open cart at the current effective price
func (h *ShopHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add-to-cart validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	line, err := h.shopService.AddToCart(r.Context(), req.ItemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be positive")
		default:
			h.logger.Error("Add-to-cart failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		}
		return
	}

	if line == nil {
		// Clamped to zero: nothing was added, but this is not an error.
		middleware.RespondWithJSON(w, http.StatusOK, AddToCartResponse{
			Added:   false,
			Message: "item is out of stock, nothing was added",
		})
		return
	}

	h.logger.Info("Cart line added",
		zap.String("item_id", line.ItemID),
		zap.Int("quantity", line.Quantity),
		zap.String("unit_price", line.UnitPrice.StringFixed(2)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, AddToCartResponse{
		Added: true,
		Line:  line,
	})
}

// ClearCart empties the open cart
func (h *ShopHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.shopService.ClearCart(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// Checkout finalizes the open cart into a receipt
func (h *ShopHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.shopService.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusConflict, "cart is empty")
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to checkout")
		return
	}

	h.logger.Info("Checkout completed",
		zap.String("receipt_id", receipt.ID.String()),
		zap.Int("order_number", receipt.Number),
		zap.String("grand_total", receipt.GrandTotal.StringFixed(2)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, receipt)
}

// Restock raises an item's current and initial stock together
func (h *ShopHandler) Restock(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Restock validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.shopService.Restock(r.Context(), itemID, req.Units)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, service.ErrNegativeRestock):
			middleware.RespondWithError(w, http.StatusBadRequest, "restock units must not be negative")
		default:
			h.logger.Error("Restock failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to restock")
		}
		return
	}

	h.logger.Info("Item restocked",
		zap.String("item_id", item.ID),
		zap.Int("units", req.Units),
		zap.Int("current_stock", item.CurrentStock),
	)
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// ListOrders returns archived receipts, most recent first
func (h *ShopHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	receipts := h.shopService.OrderHistory(r.Context(), limit)
	middleware.RespondWithJSON(w, http.StatusOK, receipts)
}

// GetReceiptText exports one receipt as flat text
func (h *ShopHandler) GetReceiptText(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid receipt id")
		return
	}

	receipt, err := h.shopService.Receipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReceiptNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "receipt not found")
			return
		}
		h.logger.Error("Receipt export failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to export receipt")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(FormatReceiptText(receipt)))
}
