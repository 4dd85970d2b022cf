package handler

import (
	"net/http"
	"time"

	"fieldservice_backend/internal/maintenance/domain"
	"fieldservice_backend/internal/maintenance/repository"
	"fieldservice_backend/internal/maintenance/service"
	"fieldservice_backend/internal/maintenance/transport"
	"fieldservice_backend/platform/httpkit"
	"fieldservice_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for maintenance records
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new maintenance handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the maintenance routes. Coordinator-only
// operations get the role middleware; execution routes are for technicians.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)

	coordinator := rg.Group("")
	coordinator.Use(httpkit.RequireRole(httpkit.RoleCoordinator))
	coordinator.POST("/:id/quotation", h.SubmitQuotation)
	coordinator.PUT("/:id/quotation", h.EditQuotation)
	coordinator.POST("/:id/no-payment", h.MarkNoPaymentRequired)
	coordinator.POST("/:id/payment/verify", h.VerifyPayment)
	coordinator.POST("/:id/assign", h.AssignTechnician)
	coordinator.POST("/:id/reschedule", h.Reschedule)
	coordinator.POST("/:id/cancel", h.Cancel)
	coordinator.POST("/:id/confirmation/called", h.MarkCoordinatorCalled)

	rg.POST("/:id/payment/proof", h.UploadPaymentProof)
	rg.POST("/:id/confirmation", h.ConfirmByClient)

	technician := rg.Group("")
	technician.Use(httpkit.RequireRole(httpkit.RoleTechnician))
	technician.POST("/:id/work/start", h.StartWork)
	technician.POST("/:id/work/actions", h.RecordAction)
	technician.PUT("/:id/devices/:deviceRef", h.SetDeviceProgress)
	technician.POST("/:id/work/complete", h.CompleteWork)

	rg.POST("/:id/documents/upload-url", h.RequestUploadURL)
	rg.GET("/documents/download-url", h.RequestDownloadURL)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// bind decodes and validates a JSON body.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

// Create handles POST /api/maintenance
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateMaintenanceRequest
	if !h.bind(c, &req) {
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		Type:        req.Type,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Address:     req.Address,
		Description: req.Description,
		DeviceRefs:  req.DeviceRefs,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToMaintenanceResponse(rec))
}

// List handles GET /api/maintenance
func (h *Handler) List(c *gin.Context) {
	var req transport.ListMaintenanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := repository.ListParams{
		Status:       req.Status,
		Type:         req.Type,
		TechnicianID: req.TechnicianID,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}
	if req.DateFrom != "" {
		from, _ := time.Parse("2006-01-02", req.DateFrom)
		params.DateFrom = &from
	}
	if req.DateTo != "" {
		to, _ := time.Parse("2006-01-02", req.DateTo)
		params.DateTo = &to
	}

	recs, total, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	page, pageSize := params.Page, params.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	httpkit.OK(c, transport.ToMaintenanceListResponse(recs, total, page, pageSize))
}

// GetByID handles GET /api/maintenance/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// SubmitQuotation handles POST /api/maintenance/:id/quotation
func (h *Handler) SubmitQuotation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SubmitQuotationRequest
	if !h.bind(c, &req) {
		return
	}

	rec, err := h.svc.SubmitQuotation(c.Request.Context(), id, req.ValueCents, req.PriceSupportRef)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// EditQuotation handles PUT /api/maintenance/:id/quotation
func (h *Handler) EditQuotation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.EditQuotationRequest
	if !h.bind(c, &req) {
		return
	}

	rec, err := h.svc.EditQuotation(c.Request.Context(), id, req.ValueCents, req.PriceSupportRef)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// MarkNoPaymentRequired handles POST /api/maintenance/:id/no-payment
func (h *Handler) MarkNoPaymentRequired(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.svc.MarkNoPaymentRequired(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// UploadPaymentProof handles POST /api/maintenance/:id/payment/proof
func (h *Handler) UploadPaymentProof(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UploadPaymentProofRequest
	if !h.bind(c, &req) {
		return
	}

	rec, err := h.svc.UploadPaymentProof(c.Request.Context(), id, req.ProofRef)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// VerifyPayment handles POST /api/maintenance/:id/payment/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.VerifyPaymentRequest
	if !h.bind(c, &req) {
		return
	}

	rec, err := h.svc.VerifyPayment(c.Request.Context(), id, *req.Accepted)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// AssignTechnician handles POST /api/maintenance/:id/assign
func (h *Handler) AssignTechnician(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.AssignTechnicianRequest
	if !h.bind(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date", nil)
		return
	}

	rec, err := h.svc.AssignTechnician(c.Request.Context(), id, req.TechnicianID, date, req.Shift)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// Reschedule handles POST /api/maintenance/:id/reschedule
func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.RescheduleRequest
	if !h.bind(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date", nil)
		return
	}

	rec, err := h.svc.Reschedule(c.Request.Context(), id, date, req.Shift, req.TechnicianID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// Cancel handles POST /api/maintenance/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	rec, err := h.svc.Cancel(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// StartWork handles POST /api/maintenance/:id/work/start
func (h *Handler) StartWork(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.StartWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	rec, err := h.svc.StartWork(c.Request.Context(), id, domain.ActionEntry{
		Action:    domain.ActionStart,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// RecordAction handles POST /api/maintenance/:id/work/actions
func (h *Handler) RecordAction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.RecordActionRequest
	if !h.bind(c, &req) {
		return
	}

	rec, err := h.svc.RecordAction(c.Request.Context(), id, domain.ActionEntry{
		Action:    req.Action,
		Reason:    req.Reason,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// SetDeviceProgress handles PUT /api/maintenance/:id/devices/:deviceRef
func (h *Handler) SetDeviceProgress(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deviceRef := c.Param("deviceRef")

	var req transport.DeviceProgressRequest
	if !h.bind(c, &req) {
		return
	}

	rec, err := h.svc.SetDeviceProgress(c.Request.Context(), id, deviceRef, req.ProgressStatus, req.ProgressPct)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// CompleteWork handles POST /api/maintenance/:id/work/complete
func (h *Handler) CompleteWork(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.svc.CompleteWork(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// ConfirmByClient handles POST /api/maintenance/:id/confirmation
func (h *Handler) ConfirmByClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.svc.ConfirmByClient(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// MarkCoordinatorCalled handles POST /api/maintenance/:id/confirmation/called
func (h *Handler) MarkCoordinatorCalled(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.svc.MarkCoordinatorCalled(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMaintenanceResponse(rec))
}

// RequestUploadURL handles POST /api/maintenance/:id/documents/upload-url
func (h *Handler) RequestUploadURL(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UploadURLRequest
	if !h.bind(c, &req) {
		return
	}

	url, err := h.svc.RequestUploadURL(c.Request.Context(), id, service.DocumentKind(req.Kind), req.FileName, req.ContentType, req.SizeBytes)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, url)
}

// RequestDownloadURL handles GET /api/maintenance/documents/download-url
func (h *Handler) RequestDownloadURL(c *gin.Context) {
	var req transport.DownloadURLRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	url, err := h.svc.RequestDownloadURL(c.Request.Context(), service.DocumentKind(req.Kind), req.FileKey)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, url)
}
