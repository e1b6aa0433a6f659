package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/query"
	"github.com/nhle/pdf-prints/internal/service"
	"github.com/nhle/pdf-prints/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// PDFService is the subset of service.Service the handlers need.
type PDFService interface {
	CreatePDF(ctx context.Context, name string, dueDate *model.Date, status *model.Status) (*model.PDF, error)
	UpdateStatus(ctx context.Context, id string, status *model.Status) (*model.PDF, error)
	Get(ctx context.Context, id string) (*model.PDF, error)
	List(ctx context.Context, c query.Criteria, page store.PageRequest) (store.Page, error)
	Count(ctx context.Context, c query.Criteria) (int, error)
}

// Handler serves the PDF HTTP API.
type Handler struct {
	svc PDFService
	v   *validatorv10.Validate
}

// NewHandler creates a Handler over svc.
func NewHandler(svc PDFService) *Handler {
	return &Handler{svc: svc, v: NewValidator()}
}

type createPDFRequest struct {
	Name    string      `json:"name"`
	DueDate *model.Date `json:"due_date"`
	Status  string      `json:"status" validate:"omitempty,oneof=PENDING PRINTED SENT CANCELED"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=PENDING PRINTED SENT CANCELED"`
}

type filterParams struct {
	Q      string `form:"q"`
	Due    string `form:"due" validate:"omitempty,oneof=ALL NO_DUE_DATE OVERDUE DUE_TODAY UPCOMING"`
	Status string `form:"status" validate:"omitempty,oneof=PENDING PRINTED SENT CANCELED"`
}

type listParams struct {
	filterParams
	Offset int    `form:"offset" validate:"min=0"`
	Limit  int    `form:"limit" validate:"min=0"`
	Sort   string `form:"sort" validate:"omitempty,oneof=name due_date created_at status"`
	Desc   bool   `form:"desc"`
}

func (p filterParams) criteria() query.Criteria {
	c := query.Criteria{Name: p.Q, Due: model.DueFilter(p.Due)}
	if p.Status != "" {
		st := model.Status(p.Status)
		c.Status = &st
	}
	return c
}

func (p listParams) pageRequest() store.PageRequest {
	limit := p.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	page := store.PageRequest{Offset: p.Offset, Limit: limit}
	if p.Sort != "" {
		page.Sort = []store.SortOrder{{Field: p.Sort, Desc: p.Desc}}
	}
	return page
}

// Health serves GET /v1/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListPDFs serves GET /v1/pdfs.
func (h *Handler) ListPDFs(c *gin.Context) {
	var p listParams
	if err := bindAndValidate(c, &p, c.ShouldBindQuery, h.v); err != nil {
		return
	}

	page, err := h.svc.List(c.Request.Context(), p.criteria(), p.pageRequest())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CountPDFs serves GET /v1/pdfs/count.
func (h *Handler) CountPDFs(c *gin.Context) {
	var p filterParams
	if err := bindAndValidate(c, &p, c.ShouldBindQuery, h.v); err != nil {
		return
	}

	n, err := h.svc.Count(c.Request.Context(), p.criteria())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// GetPDF serves GET /v1/pdfs/:id.
func (h *Handler) GetPDF(c *gin.Context) {
	pdf, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pdf)
}

// CreatePDF serves POST /v1/pdfs.
func (h *Handler) CreatePDF(c *gin.Context) {
	var req createPDFRequest
	if err := bindAndValidate(c, &req, c.ShouldBindJSON, h.v); err != nil {
		return
	}

	var status *model.Status
	if req.Status != "" {
		st := model.Status(req.Status)
		status = &st
	}

	pdf, err := h.svc.CreatePDF(c.Request.Context(), req.Name, req.DueDate, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pdf)
}

// UpdateStatus serves PATCH /v1/pdfs/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := bindAndValidate(c, &req, c.ShouldBindJSON, h.v); err != nil {
		return
	}

	st := model.Status(req.Status)
	pdf, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), &st)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pdf)
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "msg": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "msg": err.Error()})
}
