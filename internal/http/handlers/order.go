package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/http/response"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
	"github.com/ledazaf/ms-order-api/internal/services"
)

type OrderHandler struct {
	log *logger.Logger
	svc services.OrderService
}

func NewOrderHandler(baseLog *logger.Logger, svc services.OrderService) *OrderHandler {
	return &OrderHandler{
		log: baseLog.With("handler", "OrderHandler"),
		svc: svc,
	}
}

type createOrderBody struct {
	OrderDate string `json:"order_date"`
	Lines     []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	} `json:"lines"`
}

type addItemBody struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type transitionBody struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var body createOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
		return
	}
	var orderDate time.Time
	if raw := strings.TrimSpace(body.OrderDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.RespondDomainError(c, domainagg.NewError(
				domainagg.CodeValidation, "http", "order_date must be YYYY-MM-DD", err))
			return
		}
		orderDate = parsed
	}
	lines := make([]domainagg.OrderLine, 0, len(body.Lines))
	for _, l := range body.Lines {
		lines = append(lines, domainagg.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	order, err := h.svc.Create(c.Request.Context(), orderDate, lines)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, order)
}

// GET /api/orders?status=pending,confirmed
func (h *OrderHandler) List(c *gin.Context) {
	var statuses []types.OrderStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := types.ParseOrderStatus(strings.TrimSpace(part))
			if err != nil {
				response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
				return
			}
			statuses = append(statuses, status)
		}
	}
	rows, err := h.svc.List(dbctx.Context{Ctx: c.Request.Context()}, statuses)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.svc.GetByID(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /api/orders/:id/items
func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body addItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
		return
	}
	res, err := h.svc.AddItem(c.Request.Context(), id, body.ProductID, body.Quantity)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// DELETE /api/orders/:id/items/:itemId
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	res, err := h.svc.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/orders/:id/status
func (h *OrderHandler) TransitionStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body transitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
		return
	}
	var from types.OrderStatus
	if raw := strings.TrimSpace(body.From); raw != "" {
		parsed, err := types.ParseOrderStatus(raw)
		if err != nil {
			response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
			return
		}
		from = parsed
	}
	res, err := h.svc.TransitionStatus(c.Request.Context(), id, from, types.OrderStatus(strings.TrimSpace(body.To)))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
