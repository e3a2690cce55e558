package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/domain"
	lcv "landedcost/internal/domain/documents/landed_cost_voucher"
	"landedcost/internal/infrastructure/http/v1/dto"
)

// VoucherHandler handles HTTP requests for landed cost vouchers.
type VoucherHandler struct {
	*BaseHandler
	service *lcv.Service
}

// NewVoucherHandler creates a new voucher handler.
func NewVoucherHandler(base *BaseHandler, service *lcv.Service) *VoucherHandler {
	return &VoucherHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /document/landed-cost-voucher.
func (h *VoucherHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateVoucherRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid source reference").WithDetail("error", err.Error()))
		return
	}

	doc.CreatedBy = h.GetUserID(c)

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromVoucher(doc))
}

// Get handles GET /document/landed-cost-voucher/:id.
func (h *VoucherHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromVoucher(doc))
}

// Update handles PUT /document/landed-cost-voucher/:id.
func (h *VoucherHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateVoucherRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(doc); err != nil {
		h.Error(c, apperror.NewValidation("invalid source reference").WithDetail("error", err.Error()))
		return
	}
	doc.UpdatedBy = h.GetUserID(c)

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromVoucher(doc))
}

// Delete handles DELETE /document/landed-cost-voucher/:id.
func (h *VoucherHandler) Delete(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /document/landed-cost-voucher.
func (h *VoucherHandler) List(c *gin.Context) {
	filter := lcv.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")

	if status := c.Query("status"); status != "" {
		val := entity.DocStatus(status)
		filter.Status = &val
	}

	if supplier := c.Query("supplier"); supplier != "" {
		filter.Supplier = &supplier
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.VoucherResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromVoucher(doc)
	}

	h.OK(c, dto.VoucherListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Preview handles GET /document/landed-cost-voucher/:id/preview.
// Computes the allocation a submission would apply, without touching ledgers.
func (h *VoucherHandler) Preview(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	allocated, err := h.service.Preview(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"allocatedItems": allocated})
}

// Submit handles POST /document/landed-cost-voucher/:id/submit.
func (h *VoucherHandler) Submit(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SubmitResultResponse{
		AllocatedItems: result.AllocatedItems,
		Postings:       result.Postings,
	})
}

// Cancel handles POST /document/landed-cost-voucher/:id/cancel.
func (h *VoucherHandler) Cancel(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "voucher cancelled")
}

// RegisterRoutes registers voucher routes.
func (h *VoucherHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/preview", h.Preview)
	rg.POST("/:id/submit", h.Submit)
	rg.POST("/:id/cancel", h.Cancel)
}
