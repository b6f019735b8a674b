package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/http/response"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
	"github.com/ledazaf/ms-order-api/internal/services"
)

type ProductHandler struct {
	log *logger.Logger
	svc services.ProductService
}

func NewProductHandler(baseLog *logger.Logger, svc services.ProductService) *ProductHandler {
	return &ProductHandler{
		log: baseLog.With("handler", "ProductHandler"),
		svc: svc,
	}
}

type createProductBody struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
}

type updateProductBody struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Stock       *int             `json:"stock"`
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var body createProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), types.Product{
		Name:        body.Name,
		Price:       body.Price,
		Description: body.Description,
		Stock:       body.Stock,
		CategoryID:  body.CategoryID,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if res.Replaced {
		response.RespondOK(c, res.Product)
		return
	}
	response.RespondCreated(c, res.Product)
}

// GET /api/products?category_id=N
func (h *ProductHandler) List(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || categoryID <= 0 {
			response.RespondDomainError(c, domainagg.NewError(
				domainagg.CodeValidation, "http", "invalid category_id query parameter", nil))
			return
		}
		rows, err := h.svc.ListByCategory(dbc, categoryID)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		response.RespondOK(c, rows)
		return
	}
	rows, err := h.svc.List(dbc)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
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

// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body updateProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
		return
	}
	row, err := h.svc.Update(dbctx.Context{Ctx: c.Request.Context()}, id, services.UpdateProductInput{
		Name:        body.Name,
		Price:       body.Price,
		Description: body.Description,
		Stock:       body.Stock,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
