package handler

import (
	"net/http"
	"time"

	"fieldservice_backend/internal/technicians/domain"
	"fieldservice_backend/internal/technicians/service"
	"fieldservice_backend/internal/technicians/transport"
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

// Handler handles HTTP requests for the technician directory
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new technicians handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the technician routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/candidates", h.Candidates)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.GET("/:id/absences", h.ListAbsences)
	rg.POST("/:id/absences", h.CreateAbsence)
	rg.DELETE("/:id/absences/:absenceId", h.DeleteAbsence)
}

// List handles GET /api/technicians
func (h *Handler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"

	if includeInactive {
		all, err := h.svc.ListAll(c.Request.Context())
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, mapList(all))
		return
	}

	active, err := h.svc.ListActive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, mapList(active))
}

func mapList(ts []*domain.Technician) []transport.TechnicianResponse {
	out := make([]transport.TechnicianResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, transport.ToTechnicianResponse(t))
	}
	return out
}

// Create handles POST /api/technicians
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	t, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Email:        req.Email,
		Specialty:    req.Specialty,
		ContractType: req.ContractType,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToTechnicianResponse(t))
}

// Candidates handles GET /api/technicians/candidates
func (h *Handler) Candidates(c *gin.Context) {
	var req transport.CandidatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date", nil)
		return
	}

	candidates, err := h.svc.CandidatesForSlot(c.Request.Context(), date, req.Shift, req.Specialty)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToCandidateResponses(candidates))
}

// GetByID handles GET /api/technicians/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	t, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTechnicianResponse(t))
}

// Update handles PATCH /api/technicians/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	t, err := h.svc.Update(c.Request.Context(), id, service.UpdateInput{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Email:        req.Email,
		Specialty:    req.Specialty,
		ContractType: req.ContractType,
		Active:       req.Active,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTechnicianResponse(t))
}

// ListAbsences handles GET /api/technicians/:id/absences
func (h *Handler) ListAbsences(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	absences, err := h.svc.ListAbsences(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.AbsenceResponse, 0, len(absences))
	for _, a := range absences {
		out = append(out, transport.ToAbsenceResponse(a))
	}
	httpkit.OK(c, out)
}

// CreateAbsence handles POST /api/technicians/:id/absences
func (h *Handler) CreateAbsence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date", nil)
		return
	}

	a, err := h.svc.AddAbsence(c.Request.Context(), id, date, req.Shift, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToAbsenceResponse(a))
}

// DeleteAbsence handles DELETE /api/technicians/:id/absences/:absenceId
func (h *Handler) DeleteAbsence(c *gin.Context) {
	absenceID, err := uuid.Parse(c.Param("absenceId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.svc.RemoveAbsence(c.Request.Context(), absenceID); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}
