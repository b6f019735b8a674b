package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/http/response"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
	"github.com/ledazaf/ms-order-api/internal/services"
)

type CategoryHandler struct {
	log *logger.Logger
	svc services.CategoryService
}

func NewCategoryHandler(baseLog *logger.Logger, svc services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		log: baseLog.With("handler", "CategoryHandler"),
		svc: svc,
	}
}

type categoryBody struct {
	Name string `json:"name"`
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.RespondDomainError(c, domainagg.NewError(
			domainagg.CodeValidation, "http", "invalid "+name+" path parameter", nil))
		return 0, false
	}
	return id, true
}

// POST /api/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var body categoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
		return
	}
	row, err := h.svc.Create(dbctx.Context{Ctx: c.Request.Context()}, body.Name)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	rows, err := h.svc.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
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

// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body categoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
		return
	}
	row, err := h.svc.Update(dbctx.Context{Ctx: c.Request.Context()}, id, body.Name)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /api/categories/:id?cascade=true
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"
	res, err := h.svc.Delete(c.Request.Context(), id, cascade)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
