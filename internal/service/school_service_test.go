package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
)

// memSchoolRepo mimics the conditional-update semantics of the Postgres
// repository, including the atomic seat debit.
type memSchoolRepo struct {
	mu      sync.Mutex
	schools map[string]*models.School
}

func newMemSchoolRepo(schools ...*models.School) *memSchoolRepo {
	repo := &memSchoolRepo{schools: make(map[string]*models.School)}
	for _, school := range schools {
		repo.schools[school.ID] = school
	}
	return repo
}

func (r *memSchoolRepo) FindByID(_ context.Context, id string) (*models.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	school, ok := r.schools[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *school
	return &copied, nil
}

func (r *memSchoolRepo) List(_ context.Context, _ models.SchoolFilter) ([]models.School, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.School
	for _, school := range r.schools {
		if school.Active {
			out = append(out, *school)
		}
	}
	return out, len(out), nil
}

func (r *memSchoolRepo) ListAllActive(ctx context.Context) ([]models.School, error) {
	schools, _, err := r.List(ctx, models.SchoolFilter{})
	return schools, err
}

func (r *memSchoolRepo) Create(_ context.Context, school *models.School) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *school
	r.schools[school.ID] = &copied
	return nil
}

func (r *memSchoolRepo) DebitSeat(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	school, ok := r.schools[id]
	if !ok || !school.Active || school.SeatsTaken >= school.SeatsTotal {
		return 0, nil
	}
	school.SeatsTaken++
	return 1, nil
}

func (r *memSchoolRepo) UpdateSeatsTotal(_ context.Context, id string, total int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	school, ok := r.schools[id]
	if !ok || school.SeatsTaken > total {
		return 0, nil
	}
	school.SeatsTotal = total
	return 1, nil
}

func newTestSchoolService(repo schoolRepository) *SchoolService {
	return NewSchoolService(repo, nil, nil, nil, nil)
}

func TestSchoolServiceClassify(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		taken  int
		expect models.SeatStatus
	}{
		{"plenty of seats", 100, 10, models.SeatStatusOpen},
		{"just under threshold", 100, 79, models.SeatStatusOpen},
		{"at threshold", 100, 80, models.SeatStatusLimited},
		{"one seat left", 100, 99, models.SeatStatusLimited},
		{"full", 100, 100, models.SeatStatusFull},
		{"zero capacity", 0, 0, models.SeatStatusFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemSchoolRepo(&models.School{
				ID: "sch-1", Name: "EMEF Dom Pedro", Level: models.LevelFundamentalI,
				SeatsTotal: tt.total, SeatsTaken: tt.taken, Active: true,
			})
			status, err := newTestSchoolService(repo).Classify(context.Background(), "sch-1")
			require.NoError(t, err)
			assert.Equal(t, tt.expect, status)
		})
	}
}

func TestSchoolServiceClassifyNotFound(t *testing.T) {
	svc := newTestSchoolService(newMemSchoolRepo())
	_, err := svc.Classify(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestSchoolServiceTryDebit(t *testing.T) {
	repo := newMemSchoolRepo(&models.School{
		ID: "sch-1", Name: "EMEF Dom Pedro", Level: models.LevelFundamentalI,
		SeatsTotal: 2, SeatsTaken: 1, Active: true,
	})
	svc := newTestSchoolService(repo)
	ctx := context.Background()

	require.NoError(t, svc.TryDebit(ctx, "sch-1"))

	school, err := repo.FindByID(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, 2, school.SeatsTaken)

	// Second debit finds the school full.
	err = svc.TryDebit(ctx, "sch-1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSeatsExhausted))

	school, err = repo.FindByID(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, 2, school.SeatsTaken, "failed debit must not change the counter")
}

func TestSchoolServiceTryDebitMissingOrInactive(t *testing.T) {
	repo := newMemSchoolRepo(&models.School{
		ID: "closed", Name: "EMEI Encerrada", Level: models.LevelInfantil,
		SeatsTotal: 10, SeatsTaken: 0, Active: false,
	})
	svc := newTestSchoolService(repo)

	err := svc.TryDebit(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	err = svc.TryDebit(context.Background(), "closed")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestSchoolServiceTryDebitConcurrent(t *testing.T) {
	const seats = 5
	repo := newMemSchoolRepo(&models.School{
		ID: "sch-1", Name: "EMEF Dom Pedro", Level: models.LevelFundamentalI,
		SeatsTotal: seats, SeatsTaken: 0, Active: true,
	})
	svc := newTestSchoolService(repo)

	var wg sync.WaitGroup
	results := make(chan error, seats*4)
	for i := 0; i < seats*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.TryDebit(context.Background(), "sch-1")
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for err := range results {
		if err == nil {
			granted++
		} else {
			assert.True(t, appErrors.HasCode(err, appErrors.ErrSeatsExhausted))
		}
	}
	assert.Equal(t, seats, granted, "exactly one debit per seat must succeed")

	school, err := repo.FindByID(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, seats, school.SeatsTaken)
}

func TestSchoolServiceUpdateSeatsTotal(t *testing.T) {
	repo := newMemSchoolRepo(&models.School{
		ID: "sch-1", Name: "EMEF Dom Pedro", Level: models.LevelFundamentalI,
		SeatsTotal: 10, SeatsTaken: 6, Active: true,
	})
	svc := newTestSchoolService(repo)
	ctx := context.Background()

	view, err := svc.UpdateSeatsTotal(ctx, "sch-1", UpdateSeatsRequest{SeatsTotal: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, view.SeatsTotal)
	assert.Equal(t, 2, view.SeatsAvailable)

	// Shrinking below the seats already taken is rejected.
	_, err = svc.UpdateSeatsTotal(ctx, "sch-1", UpdateSeatsRequest{SeatsTotal: 5})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))

	_, err = svc.UpdateSeatsTotal(ctx, "missing", UpdateSeatsRequest{SeatsTotal: 5})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestSchoolServiceOccupancyReport(t *testing.T) {
	repo := newMemSchoolRepo(&models.School{
		ID: "sch-1", Name: "EMEF Dom Pedro", Level: models.LevelFundamentalI,
		SeatsTotal: 10, SeatsTaken: 9, Active: true,
	})
	svc := newTestSchoolService(repo)

	dataset, err := svc.OccupancyReport(context.Background())
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	row := dataset.Rows[0]
	assert.Equal(t, "EMEF Dom Pedro", row["escola"])
	assert.Equal(t, "10", row["vagas_totais"])
	assert.Equal(t, "1", row["vagas_disponiveis"])
	assert.Equal(t, string(models.SeatStatusLimited), row["status_vagas"])
}
