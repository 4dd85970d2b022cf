package transport

import (
	"time"

	"fieldservice_backend/internal/maintenance/domain"

	"github.com/google/uuid"
)

// CreateMaintenanceRequest is the request body for registering a maintenance request
type CreateMaintenanceRequest struct {
	Type        domain.MaintenanceType `json:"type" validate:"required,oneof=preventive corrective"`
	ClientName  string                 `json:"clientName" validate:"required,min=2,max=200"`
	ClientPhone string                 `json:"clientPhone" validate:"required"`
	Address     string                 `json:"address" validate:"required,max=500"`
	Description *string                `json:"description,omitempty" validate:"omitempty,max=2000"`
	DeviceRefs  []string               `json:"deviceRefs" validate:"omitempty,dive,min=1,max=100"`
}

// ListMaintenanceRequest is the query parameters for listing records
type ListMaintenanceRequest struct {
	Status       *domain.Status          `form:"status" validate:"omitempty,oneof=pending quoted payment_uploaded approved rejected assigned in_progress completed cancelled"`
	Type         *domain.MaintenanceType `form:"type" validate:"omitempty,oneof=preventive corrective"`
	TechnicianID *uuid.UUID              `form:"technicianId"`
	DateFrom     string                  `form:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo       string                  `form:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	Page         int                     `form:"page"`
	PageSize     int                     `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// SubmitQuotationRequest is the request body for pricing a pending request
type SubmitQuotationRequest struct {
	ValueCents      int64  `json:"valueCents" validate:"required,gt=0"`
	PriceSupportRef string `json:"priceSupportRef" validate:"required"`
}

// EditQuotationRequest corrects an unsettled quotation
type EditQuotationRequest struct {
	ValueCents      int64   `json:"valueCents" validate:"required,gt=0"`
	PriceSupportRef *string `json:"priceSupportRef,omitempty"`
}

// UploadPaymentProofRequest attaches the client's payment receipt
type UploadPaymentProofRequest struct {
	ProofRef string `json:"proofRef" validate:"required"`
}

// VerifyPaymentRequest records the coordinator's verdict on a receipt
type VerifyPaymentRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

// AssignTechnicianRequest binds a technician to a slot
type AssignTechnicianRequest struct {
	TechnicianID uuid.UUID    `json:"technicianId" validate:"required"`
	Date         string       `json:"date" validate:"required,datetime=2006-01-02"`
	Shift        domain.Shift `json:"shift" validate:"required,oneof=AM PM"`
}

// RescheduleRequest moves a visit to a new slot
type RescheduleRequest struct {
	Date         string       `json:"date" validate:"required,datetime=2006-01-02"`
	Shift        domain.Shift `json:"shift" validate:"required,oneof=AM PM"`
	TechnicianID *uuid.UUID   `json:"technicianId,omitempty"`
}

// CancelRequest terminates a record
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// StartWorkRequest records the technician's arrival
type StartWorkRequest struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// RecordActionRequest appends a pause/resume/end entry to the execution log
type RecordActionRequest struct {
	Action    domain.ActionType `json:"action" validate:"required,oneof=pause resume end"`
	Reason    *string           `json:"reason,omitempty" validate:"omitempty,max=500"`
	Latitude  *float64          `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64          `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// DeviceProgressRequest updates one linked device
type DeviceProgressRequest struct {
	ProgressStatus domain.ProgressStatus `json:"progressStatus" validate:"required,oneof=pending in_progress completed"`
	ProgressPct    int                   `json:"progressPct" validate:"min=0,max=100"`
}

// UploadURLRequest asks for a presigned upload slot for a record document
type UploadURLRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=quotation payment_proof"`
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// DownloadURLRequest asks for a presigned download of a stored document
type DownloadURLRequest struct {
	Kind    string `form:"kind" validate:"required,oneof=quotation payment_proof"`
	FileKey string `form:"fileKey" validate:"required"`
}

// PaymentResponse is the payment ledger section of a record response
type PaymentResponse struct {
	IsPaid            *bool   `json:"isPaid"`
	ValueCents        *int64  `json:"valueCents,omitempty"`
	PriceSupportRef   *string `json:"priceSupportRef,omitempty"`
	PaymentSupportRef *string `json:"paymentSupportRef,omitempty"`
}

// ConfirmationResponse is the confirmation tracker section of a record response
type ConfirmationResponse struct {
	Required              bool       `json:"required"`
	ConfirmedAt           *time.Time `json:"confirmedAt,omitempty"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	CoordinatorNotified   bool       `json:"coordinatorNotified"`
	CoordinatorNotifiedAt *time.Time `json:"coordinatorNotifiedAt,omitempty"`
	CoordinatorCalled     bool       `json:"coordinatorCalled"`
	CoordinatorCalledAt   *time.Time `json:"coordinatorCalledAt,omitempty"`
}

// DeviceResponse is one linked device in a record response
type DeviceResponse struct {
	DeviceRef      string                `json:"deviceRef"`
	ProgressStatus domain.ProgressStatus `json:"progressStatus"`
	ProgressPct    int                   `json:"progressPct"`
}

// ActionResponse is one execution log entry in a record response
type ActionResponse struct {
	Action    domain.ActionType `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Reason    *string           `json:"reason,omitempty"`
	Latitude  *float64          `json:"latitude,omitempty"`
	Longitude *float64          `json:"longitude,omitempty"`
}

// MaintenanceResponse is the response body for a maintenance record
type MaintenanceResponse struct {
	ID              uuid.UUID              `json:"id"`
	Type            domain.MaintenanceType `json:"type"`
	Status          domain.Status          `json:"status"`
	ClientName      string                 `json:"clientName"`
	ClientPhone     string                 `json:"clientPhone"`
	Address         string                 `json:"address"`
	Description     *string                `json:"description,omitempty"`
	DateMaintenance *string                `json:"dateMaintenance,omitempty"`
	Shift           *domain.Shift          `json:"shift,omitempty"`
	TechnicianID    *uuid.UUID             `json:"technicianId,omitempty"`
	Payment         PaymentResponse        `json:"payment"`
	Confirmation    ConfirmationResponse   `json:"confirmation"`
	Devices         []DeviceResponse       `json:"devices"`
	Actions         []ActionResponse       `json:"actions,omitempty"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// MaintenanceListResponse is the paginated response for listing records
type MaintenanceListResponse struct {
	Items    []MaintenanceResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

// ToMaintenanceResponse maps a domain record to its response shape
func ToMaintenanceResponse(rec *domain.Record) MaintenanceResponse {
	resp := MaintenanceResponse{
		ID:           rec.ID,
		Type:         rec.Type,
		Status:       rec.Status,
		ClientName:   rec.ClientName,
		ClientPhone:  rec.ClientPhone,
		Address:      rec.Address,
		Description:  rec.Description,
		Shift:        rec.Shift,
		TechnicianID: rec.TechnicianID,
		Payment: PaymentResponse{
			IsPaid:            rec.Payment.IsPaid,
			ValueCents:        rec.Payment.ValueCents,
			PriceSupportRef:   rec.Payment.PriceSupportRef,
			PaymentSupportRef: rec.Payment.PaymentSupportRef,
		},
		Confirmation: ConfirmationResponse{
			Required:              rec.Confirmation.Required,
			ConfirmedAt:           rec.Confirmation.ConfirmedAt,
			Deadline:              rec.Confirmation.Deadline,
			CoordinatorNotified:   rec.Confirmation.CoordinatorNotified,
			CoordinatorNotifiedAt: rec.Confirmation.CoordinatorNotifiedAt,
			CoordinatorCalled:     rec.Confirmation.CoordinatorCalled,
			CoordinatorCalledAt:   rec.Confirmation.CoordinatorCalledAt,
		},
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}

	if rec.DateMaintenance != nil {
		formatted := rec.DateMaintenance.Format("2006-01-02")
		resp.DateMaintenance = &formatted
	}

	resp.Devices = make([]DeviceResponse, 0, len(rec.Devices))
	for _, d := range rec.Devices {
		resp.Devices = append(resp.Devices, DeviceResponse{
			DeviceRef:      d.DeviceRef,
			ProgressStatus: d.ProgressStatus,
			ProgressPct:    d.ProgressPct,
		})
	}

	for _, a := range rec.Actions {
		resp.Actions = append(resp.Actions, ActionResponse{
			Action:    a.Action,
			Timestamp: a.Timestamp,
			Reason:    a.Reason,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
		})
	}

	return resp
}

// ToMaintenanceListResponse maps a page of records
func ToMaintenanceListResponse(recs []*domain.Record, total, page, pageSize int) MaintenanceListResponse {
	items := make([]MaintenanceResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, ToMaintenanceResponse(rec))
	}
	return MaintenanceListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
