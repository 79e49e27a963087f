package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	"github.com/prefeitura-sp/central-cidadao-api/internal/notify"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/protocol"
)

type serviceRequestRepository interface {
	Create(ctx context.Context, request *models.ServiceRequest) error
	FindByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	FindByProtocol(ctx context.Context, protocol string) (*models.ServiceRequest, error)
	List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, int, error)
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus, completedAt *time.Time) error
}

// CreateServiceRequestRequest describes ticket creation payload.
type CreateServiceRequestRequest struct {
	CitizenID   string                 `json:"cidadao_id" validate:"required"`
	Type        models.ServiceType     `json:"tipo_servico" validate:"required"`
	Description string                 `json:"descricao" validate:"required"`
	Street      string                 `json:"endereco"`
	District    string                 `json:"bairro"`
	Landmark    string                 `json:"ponto_referencia"`
	Priority    models.RequestPriority `json:"prioridade"`
}

// UpdateRequestStatusRequest carries the target ticket status.
type UpdateRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required"`
}

// ServiceRequestService manages the municipal ticketing desk. Tickets share
// the protocol issuer with enrollments but keep the permissive status model
// of the original desk: any recognised status can be set at any time.
type ServiceRequestService struct {
	repo      serviceRequestRepository
	citizens  citizenReader
	issuer    *protocol.Issuer
	emitter   notify.Emitter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewServiceRequestService constructs ServiceRequestService.
func NewServiceRequestService(repo serviceRequestRepository, citizens citizenReader, issuer *protocol.Issuer, emitter notify.Emitter, validate *validator.Validate, logger *zap.Logger) *ServiceRequestService {
	if issuer == nil {
		issuer = protocol.NewIssuer()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceRequestService{repo: repo, citizens: citizens, issuer: issuer, emitter: emitter, validator: validate, logger: logger}
}

// Create opens a new service ticket and notifies the citizen.
func (s *ServiceRequestService) Create(ctx context.Context, req CreateServiceRequestRequest) (*models.ServiceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service request payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown service type: "+string(req.Type))
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority: "+string(req.Priority))
	}

	citizen, err := s.citizens.FindByID(ctx, req.CitizenID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "citizen not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load citizen")
	}

	request := &models.ServiceRequest{
		Protocol:    s.issuer.New(req.Type.ProtocolKind()),
		CitizenID:   req.CitizenID,
		Type:        req.Type,
		Description: req.Description,
		Street:      req.Street,
		District:    req.District,
		Landmark:    req.Landmark,
		Priority:    priority,
		Status:      models.RequestStatusOpen,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service request")
	}

	s.notify(ctx, citizen.ID, "Solicitação Registrada",
		fmt.Sprintf("Sua solicitação de %s foi registrada com protocolo %s", req.Type.Label(), request.Protocol),
		models.NotificationSuccess)

	return request, nil
}

// Get returns a service request by ID.
func (s *ServiceRequestService) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service request")
	}
	return request, nil
}

// GetByProtocol returns a service request by its tracking protocol.
func (s *ServiceRequestService) GetByProtocol(ctx context.Context, proto string) (*models.ServiceRequest, error) {
	request, err := s.repo.FindByProtocol(ctx, proto)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service request")
	}
	return request, nil
}

// List returns service requests with pagination metadata.
func (s *ServiceRequestService) List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, *models.Pagination, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown service type: "+string(filter.Type))
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status: "+string(filter.Status))
	}
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list service requests")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return requests, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus sets a ticket's status, stamping the completion time when it
// closes as CONCLUIDA, and notifies the citizen.
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, id string, req UpdateRequestStatusRequest) (*models.ServiceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status: "+string(req.Status))
	}

	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var completedAt *time.Time
	if req.Status == models.RequestStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	} else {
		completedAt = request.CompletedAt
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, completedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service request status")
	}

	s.notify(ctx, request.CitizenID, "Status da Solicitação Atualizado",
		fmt.Sprintf("Sua solicitação %s foi atualizada para: %s", request.Protocol, req.Status.Label()),
		models.NotificationInfo)

	return s.Get(ctx, id)
}

func (s *ServiceRequestService) notify(ctx context.Context, citizenID, title, body string, kind models.NotificationKind) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, notify.Message{CitizenID: citizenID, Title: title, Body: body, Kind: kind})
}
