package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/export"
)

type schoolRepository interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
	List(ctx context.Context, filter models.SchoolFilter) ([]models.School, int, error)
	ListAllActive(ctx context.Context) ([]models.School, error)
	Create(ctx context.Context, school *models.School) error
	DebitSeat(ctx context.Context, id string) (int64, error)
	UpdateSeatsTotal(ctx context.Context, id string, total int) (int64, error)
}

// CreateSchoolRequest describes school registration payload.
type CreateSchoolRequest struct {
	Name       string                `json:"nome" validate:"required"`
	Street     string                `json:"endereco"`
	District   string                `json:"bairro"`
	City       string                `json:"cidade"`
	Phone      string                `json:"telefone"`
	Level      models.EducationLevel `json:"nivel_ensino" validate:"required"`
	SeatsTotal int                   `json:"vagas_totais" validate:"gte=0"`
}

// UpdateSeatsRequest adjusts a school's administrative seat total.
type UpdateSeatsRequest struct {
	SeatsTotal int `json:"vagas_totais" validate:"gte=0"`
}

// SchoolService owns the school directory and the seat ledger. All seat
// consumption goes through TryDebit; nothing ever decrements the occupied
// counter.
type SchoolService struct {
	repo      schoolRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs SchoolService.
func NewSchoolService(repo schoolRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Get returns a school with derived seat figures.
func (s *SchoolService) Get(ctx context.Context, id string) (*models.SchoolView, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	view := school.View()
	return &view, nil
}

// List returns active schools with pagination metadata. Directory reads are
// cached; any seat mutation invalidates the whole directory.
func (s *SchoolService) List(ctx context.Context, filter models.SchoolFilter) ([]models.SchoolView, *models.Pagination, error) {
	if filter.Level != "" && !filter.Level.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown education level: "+string(filter.Level))
	}

	type cached struct {
		Views      []models.SchoolView `json:"views"`
		Pagination *models.Pagination  `json:"pagination"`
	}
	key := schoolListCacheKey(filter)
	var hit cached
	if ok, _ := s.cache.Get(ctx, key, &hit); ok {
		return hit.Views, hit.Pagination, nil
	}

	schools, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
	}
	views := make([]models.SchoolView, 0, len(schools))
	for _, school := range schools {
		views = append(views, school.View())
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

	_ = s.cache.Set(ctx, key, cached{Views: views, Pagination: pagination}, 0)
	return views, pagination, nil
}

// Create registers a school.
func (s *SchoolService) Create(ctx context.Context, req CreateSchoolRequest) (*models.SchoolView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}
	if !req.Level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown education level: "+string(req.Level))
	}
	school := &models.School{
		Name:       req.Name,
		Street:     req.Street,
		District:   req.District,
		City:       req.City,
		Phone:      req.Phone,
		Level:      req.Level,
		SeatsTotal: req.SeatsTotal,
		Active:     true,
	}
	if err := s.repo.Create(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school")
	}
	s.invalidateDirectory(ctx)
	view := school.View()
	return &view, nil
}

// Available returns the remaining seat count for an active school.
func (s *SchoolService) Available(ctx context.Context, id string) (int, error) {
	school, err := s.activeSchool(ctx, id)
	if err != nil {
		return 0, err
	}
	return school.SeatsAvailable(), nil
}

// Classify buckets the school's current occupancy. Pure read, no side effect.
func (s *SchoolService) Classify(ctx context.Context, id string) (models.SeatStatus, error) {
	school, err := s.activeSchool(ctx, id)
	if err != nil {
		return "", err
	}
	return school.SeatClassification(), nil
}

// TryDebit consumes one seat. The check-and-increment is a single conditional
// update at the storage layer, so concurrent debits on the same school are
// race-free without in-process locking. Fails with SeatsExhausted only when
// the school exists and is active but has no seat left.
func (s *SchoolService) TryDebit(ctx context.Context, id string) error {
	rows, err := s.repo.DebitSeat(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to debit seat")
	}
	if rows > 0 {
		s.metrics.RecordSeatDebit(true)
		s.invalidateDirectory(ctx)
		return nil
	}
	// No row matched: school missing, inactive or full.
	if _, err := s.activeSchool(ctx, id); err != nil {
		return err
	}
	s.metrics.RecordSeatDebit(false)
	return appErrors.Clone(appErrors.ErrSeatsExhausted, "school has no seats available")
}

// UpdateSeatsTotal sets the administrative seat total for a school. The new
// total may not fall below the seats already taken.
func (s *SchoolService) UpdateSeatsTotal(ctx context.Context, id string, req UpdateSeatsRequest) (*models.SchoolView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seats payload")
	}
	rows, err := s.repo.UpdateSeatsTotal(ctx, id, req.SeatsTotal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update seats")
	}
	if rows == 0 {
		school, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("seat total %d is below %d seats already taken", req.SeatsTotal, school.SeatsTaken))
	}
	s.invalidateDirectory(ctx)
	return s.Get(ctx, id)
}

// OccupancyReport builds the per-school seat dataset for CSV export.
func (s *SchoolService) OccupancyReport(ctx context.Context) (export.Dataset, error) {
	schools, err := s.repo.ListAllActive(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schools")
	}
	dataset := export.Dataset{
		Headers: []string{"escola", "nivel_ensino", "vagas_totais", "vagas_ocupadas", "vagas_disponiveis", "status_vagas"},
	}
	for _, school := range schools {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"escola":            school.Name,
			"nivel_ensino":      string(school.Level),
			"vagas_totais":      strconv.Itoa(school.SeatsTotal),
			"vagas_ocupadas":    strconv.Itoa(school.SeatsTaken),
			"vagas_disponiveis": strconv.Itoa(school.SeatsAvailable()),
			"status_vagas":      string(school.SeatClassification()),
		})
	}
	return dataset, nil
}

func (s *SchoolService) activeSchool(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	if !school.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school is inactive")
	}
	return school, nil
}

func (s *SchoolService) invalidateDirectory(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, "schools:*")
}

func schoolListCacheKey(filter models.SchoolFilter) string {
	return fmt.Sprintf("schools:list:%s:%s:%s:%t:%d:%d",
		filter.Level, filter.District, filter.Name, filter.OnlyOpenSeats, filter.Page, filter.PageSize)
}
