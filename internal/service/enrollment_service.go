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
	"github.com/prefeitura-sp/central-cidadao-api/pkg/export"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/protocol"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByProtocol(ctx context.Context, protocol string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ListByCitizen(ctx context.Context, citizenID string) ([]models.Enrollment, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to models.EnrollmentStatus, seatDebited bool) (int64, error)
}

type citizenReader interface {
	FindByID(ctx context.Context, id string) (*models.Citizen, error)
}

// seatLedger is the slice of SchoolService the enrollment workflow needs.
type seatLedger interface {
	Available(ctx context.Context, schoolID string) (int, error)
	TryDebit(ctx context.Context, schoolID string) error
}

// CreateEnrollmentRequest describes enrollment creation payload.
type CreateEnrollmentRequest struct {
	CitizenID   string                `json:"cidadao_id" validate:"required"`
	SchoolID    string                `json:"escola_id" validate:"required"`
	StudentName string                `json:"nome_aluno" validate:"required"`
	BirthDate   string                `json:"data_nascimento" validate:"omitempty,datetime=2006-01-02"`
	Level       models.EducationLevel `json:"nivel_ensino" validate:"required"`
	Grade       string                `json:"serie"`
	Notes       string                `json:"observacoes"`
}

// TransitionEnrollmentRequest carries the requested target status.
type TransitionEnrollmentRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required"`
}

// EnrollmentService orchestrates the seat-bounded enrollment workflow:
// protocol issuance, seat gating and debiting, status transitions and
// citizen notifications.
type EnrollmentService struct {
	repo      enrollmentRepository
	citizens  citizenReader
	ledger    seatLedger
	issuer    *protocol.Issuer
	emitter   notify.Emitter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, citizens citizenReader, ledger seatLedger, issuer *protocol.Issuer, emitter notify.Emitter, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if issuer == nil {
		issuer = protocol.NewIssuer()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		citizens:  citizens,
		ledger:    ledger,
		issuer:    issuer,
		emitter:   emitter,
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Create registers a new enrollment request. The availability check here is
// advisory: the seat is only consumed when the enrollment is approved, and
// correctness under concurrency rests on the ledger's atomic debit at that
// point.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if !req.Level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown education level: "+string(req.Level))
	}

	citizen, err := s.citizens.FindByID(ctx, req.CitizenID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "citizen not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load citizen")
	}

	available, err := s.ledger.Available(ctx, req.SchoolID)
	if err != nil {
		return nil, err
	}
	if available <= 0 {
		return nil, appErrors.Clone(appErrors.ErrSeatsExhausted, "school has no seats available")
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
		}
		birthDate = &parsed
	}

	enrollment := &models.Enrollment{
		Protocol:    s.issuer.New(protocol.KindEnrollment),
		CitizenID:   req.CitizenID,
		SchoolID:    req.SchoolID,
		StudentName: req.StudentName,
		BirthDate:   birthDate,
		Level:       req.Level,
		Grade:       req.Grade,
		Status:      models.EnrollmentStatusPending,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.notify(ctx, citizen.ID, "Matrícula Registrada",
		fmt.Sprintf("Sua solicitação de matrícula foi registrada com protocolo %s", enrollment.Protocol),
		models.NotificationSuccess)

	return s.detail(ctx, enrollment.ID)
}

// Transition moves an enrollment to the requested status. The record is
// claimed with an optimistic conditional update before any seat debit, so
// concurrent transitions on the same enrollment cannot both proceed. When
// the transition requires a seat and none is left the claim is rolled back
// and the enrollment keeps its previous status.
func (s *EnrollmentService) Transition(ctx context.Context, id string, req TransitionEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}

	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	next, effect, err := models.PlanTransition(enrollment.Status, req.Status, enrollment.SeatDebited)
	if err != nil {
		return nil, err
	}
	if next == enrollment.Status && effect == models.SeatEffectNone {
		// Idempotent retry of the current status: nothing to persist.
		return s.detail(ctx, id)
	}

	claimed, err := s.repo.UpdateStatusFrom(ctx, id, enrollment.Status, next, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	if claimed == 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment was modified concurrently")
	}

	if effect == models.SeatEffectDebit {
		if err := s.ledger.TryDebit(ctx, enrollment.SchoolID); err != nil {
			// All-or-nothing: release the claim so the enrollment keeps
			// its previous status.
			if reverted, revertErr := s.repo.UpdateStatusFrom(ctx, id, next, enrollment.Status, false); revertErr != nil || reverted == 0 {
				s.logger.Error("failed to revert enrollment claim after debit failure",
					zap.String("enrollment_id", id),
					zap.Error(revertErr))
			}
			return nil, err
		}
		// Latch the debit so later transitions never consume a second seat.
		if latched, err := s.repo.UpdateStatusFrom(ctx, id, next, next, true); err != nil || latched == 0 {
			s.logger.Error("failed to latch seat debit",
				zap.String("enrollment_id", id),
				zap.Error(err))
		}
	}

	s.notify(ctx, enrollment.CitizenID, "Status da Matrícula Atualizado",
		fmt.Sprintf("Sua matrícula %s foi atualizada para: %s", enrollment.Protocol, next.Label()),
		models.NotificationInfo)

	return s.detail(ctx, id)
}

// Get returns an enrollment with citizen and school names.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	return s.detail(ctx, id)
}

// GetByProtocol returns an enrollment looked up by its tracking protocol.
func (s *EnrollmentService) GetByProtocol(ctx context.Context, proto string) (*models.EnrollmentDetail, error) {
	enrollment, err := s.repo.FindByProtocol(ctx, proto)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return s.detail(ctx, enrollment.ID)
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status: "+string(filter.Status))
	}
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// ListByCitizen returns a citizen's enrollments, newest first.
func (s *EnrollmentService) ListByCitizen(ctx context.Context, citizenID string) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Receipt renders the enrollment confirmation PDF handed to the citizen.
func (s *EnrollmentService) Receipt(ctx context.Context, id string) ([]byte, error) {
	detail, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := []export.Field{
		{Label: "Protocolo", Value: detail.Protocol},
		{Label: "Aluno", Value: detail.StudentName},
		{Label: "Responsável", Value: detail.CitizenName},
		{Label: "Escola", Value: detail.SchoolName},
		{Label: "Nível de Ensino", Value: string(detail.Level)},
		{Label: "Status", Value: detail.Status.Label()},
		{Label: "Data da Solicitação", Value: detail.RequestedAt.Format("02/01/2006 15:04")},
	}
	if detail.Grade != "" {
		fields = append(fields, export.Field{Label: "Série", Value: detail.Grade})
	}
	doc, err := s.pdf.RenderDocument("Comprovante de Matrícula", fields)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return doc, nil
}

func (s *EnrollmentService) detail(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

func (s *EnrollmentService) notify(ctx context.Context, citizenID, title, body string, kind models.NotificationKind) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, notify.Message{CitizenID: citizenID, Title: title, Body: body, Kind: kind})
}
