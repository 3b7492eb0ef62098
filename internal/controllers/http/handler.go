package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"order-service/internal/domain"
	"order-service/internal/services"
)

const ordersCacheKey = "orders:all"

type Handler struct {
	service *services.OrderService
	rdb     *redis.Client
	logger  *zap.SugaredLogger
}

func NewHandler(s *services.OrderService, rdb *redis.Client, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: s, rdb: rdb, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/accept", h.AcceptOrder)
	r.POST("/orders/:id/reject", h.RejectOrder)
}

// statusFor maps the core error taxonomy onto HTTP statuses. The core itself
// knows nothing about HTTP.
func statusFor(err error) int {
	var (
		validationErr  *domain.ValidationError
		productErr     *domain.ProductNotFoundError
		stockErr       *domain.InsufficientStockError
		reservationErr *domain.ReservationNotFoundError
		transitionErr  *domain.InvalidStateTransitionError
		persistenceErr *domain.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &productErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.As(err, &reservationErr):
		return http.StatusConflict
	case errors.As(err, &transitionErr):
		return http.StatusConflict
	case errors.As(err, &persistenceErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := domain.CustomerInfo{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
		Notes:       req.Notes,
	}
	lines := make([]services.LineRequest, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, services.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.service.CreateOrder(c.Request.Context(), customer, lines)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.invalidateListCache()
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) AcceptOrder(c *gin.Context) {
	order, err := h.service.AcceptOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.invalidateListCache()
	c.JSON(http.StatusOK, order)
}

func (h *Handler) RejectOrder(c *gin.Context) {
	// The body is optional; rejection without a reason gets the default text.
	var req RejectOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	order, err := h.service.RejectOrder(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.invalidateListCache()
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, ordersCacheKey).Result(); err == nil {
			var orders []domain.Order
			if err := json.Unmarshal([]byte(cached), &orders); err == nil {
				c.JSON(http.StatusOK, orders)
				return
			}
		}
	}

	orders, err := h.service.ListOrders(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	if h.rdb != nil {
		if data, err := json.Marshal(orders); err == nil {
			h.rdb.Set(ctx, ordersCacheKey, data, 10*time.Second)
		}
	}

	c.JSON(http.StatusOK, orders)
}

func (h *Handler) invalidateListCache() {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.Del(context.Background(), ordersCacheKey).Err(); err != nil {
		h.logger.Debugw("failed to invalidate order list cache", "err", err)
	}
}
