package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
)

type citizenRepository interface {
	FindByID(ctx context.Context, id string) (*models.Citizen, error)
	FindByCPF(ctx context.Context, cpf string) (*models.Citizen, error)
	List(ctx context.Context, page, size int) ([]models.Citizen, int, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, citizen *models.Citizen) error
	Update(ctx context.Context, citizen *models.Citizen) error
	Delete(ctx context.Context, id string) (int64, error)
}

// CreateCitizenRequest describes citizen registration payload.
type CreateCitizenRequest struct {
	Name       string `json:"nome" validate:"required"`
	CPF        string `json:"cpf" validate:"required,len=11,numeric"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"telefone"`
	ZipCode    string `json:"cep"`
	Street     string `json:"endereco"`
	Number     string `json:"numero"`
	Complement string `json:"complemento"`
	District   string `json:"bairro"`
	City       string `json:"cidade"`
	State      string `json:"estado"`
}

// UpdateCitizenRequest describes citizen profile updates. CPF and email are
// immutable.
type UpdateCitizenRequest struct {
	Name       string `json:"nome" validate:"required"`
	Phone      string `json:"telefone"`
	ZipCode    string `json:"cep"`
	Street     string `json:"endereco"`
	Number     string `json:"numero"`
	Complement string `json:"complemento"`
	District   string `json:"bairro"`
	City       string `json:"cidade"`
	State      string `json:"estado"`
}

// CitizenService manages citizen profiles.
type CitizenService struct {
	repo      citizenRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCitizenService constructs CitizenService.
func NewCitizenService(repo citizenRepository, validate *validator.Validate, logger *zap.Logger) *CitizenService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CitizenService{repo: repo, validator: validate, logger: logger}
}

// Get returns a citizen by ID.
func (s *CitizenService) Get(ctx context.Context, id string) (*models.Citizen, error) {
	citizen, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "citizen not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load citizen")
	}
	return citizen, nil
}

// GetByCPF returns a citizen by CPF.
func (s *CitizenService) GetByCPF(ctx context.Context, cpf string) (*models.Citizen, error) {
	citizen, err := s.repo.FindByCPF(ctx, cpf)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "citizen not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load citizen")
	}
	return citizen, nil
}

// List returns citizens with pagination metadata.
func (s *CitizenService) List(ctx context.Context, page, size int) ([]models.Citizen, *models.Pagination, error) {
	citizens, total, err := s.repo.List(ctx, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list citizens")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return citizens, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers a new citizen, rejecting duplicate CPF or email.
func (s *CitizenService) Create(ctx context.Context, req CreateCitizenRequest) (*models.Citizen, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid citizen payload")
	}
	if exists, err := s.repo.ExistsByCPF(ctx, req.CPF); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate cpf")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
	}
	if exists, err := s.repo.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	citizen := &models.Citizen{
		Name:       req.Name,
		CPF:        req.CPF,
		Email:      req.Email,
		Phone:      req.Phone,
		ZipCode:    req.ZipCode,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       req.City,
		State:      req.State,
	}
	if err := s.repo.Create(ctx, citizen); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create citizen")
	}
	return citizen, nil
}

// Update rewrites a citizen's profile data.
func (s *CitizenService) Update(ctx context.Context, id string, req UpdateCitizenRequest) (*models.Citizen, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid citizen payload")
	}
	citizen, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	citizen.Name = req.Name
	citizen.Phone = req.Phone
	citizen.ZipCode = req.ZipCode
	citizen.Street = req.Street
	citizen.Number = req.Number
	citizen.Complement = req.Complement
	citizen.District = req.District
	citizen.City = req.City
	citizen.State = req.State

	if err := s.repo.Update(ctx, citizen); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update citizen")
	}
	return citizen, nil
}

// Delete removes a citizen record.
func (s *CitizenService) Delete(ctx context.Context, id string) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete citizen")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "citizen not found")
	}
	return nil
}
