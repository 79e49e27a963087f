package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	"github.com/prefeitura-sp/central-cidadao-api/internal/notify"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
)

// memEnrollmentRepo mirrors the optimistic conditional update the Postgres
// repository performs in UpdateStatusFrom.
type memEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[string]*models.Enrollment
	nextID      int
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{enrollments: make(map[string]*models.Enrollment)}
}

func (r *memEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if enrollment.ID == "" {
		r.nextID++
		enrollment.ID = fmt.Sprintf("enr-%03d", r.nextID)
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	copied := *enrollment
	r.enrollments[enrollment.ID] = &copied
	return nil
}

func (r *memEnrollmentRepo) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *enrollment
	return &copied, nil
}

func (r *memEnrollmentRepo) FindByProtocol(_ context.Context, protocol string) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, enrollment := range r.enrollments {
		if enrollment.Protocol == protocol {
			copied := *enrollment
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	enrollment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.EnrollmentDetail{Enrollment: *enrollment, CitizenName: "Maria Souza", SchoolName: "EMEF Dom Pedro"}, nil
}

func (r *memEnrollmentRepo) List(_ context.Context, _ models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EnrollmentDetail
	for _, enrollment := range r.enrollments {
		out = append(out, models.EnrollmentDetail{Enrollment: *enrollment})
	}
	return out, len(out), nil
}

func (r *memEnrollmentRepo) ListByCitizen(_ context.Context, citizenID string) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Enrollment
	for _, enrollment := range r.enrollments {
		if enrollment.CitizenID == citizenID {
			out = append(out, *enrollment)
		}
	}
	return out, nil
}

func (r *memEnrollmentRepo) UpdateStatusFrom(_ context.Context, id string, from, to models.EnrollmentStatus, seatDebited bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.enrollments[id]
	if !ok || enrollment.Status != from {
		return 0, nil
	}
	enrollment.Status = to
	enrollment.SeatDebited = enrollment.SeatDebited || seatDebited
	return 1, nil
}

type stubCitizens struct {
	citizens map[string]*models.Citizen
}

func (s *stubCitizens) FindByID(_ context.Context, id string) (*models.Citizen, error) {
	citizen, ok := s.citizens[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return citizen, nil
}

// captureEmitter records emitted messages synchronously.
type captureEmitter struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (e *captureEmitter) Emit(_ context.Context, msg notify.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, msg)
}

func (e *captureEmitter) all() []notify.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notify.Message(nil), e.messages...)
}

type enrollmentFixture struct {
	svc        *EnrollmentService
	repo       *memEnrollmentRepo
	schoolRepo *memSchoolRepo
	emitter    *captureEmitter
}

func newEnrollmentFixture(t *testing.T, seatsTotal, seatsTaken int) *enrollmentFixture {
	t.Helper()
	schoolRepo := newMemSchoolRepo(&models.School{
		ID: "sch-1", Name: "EMEF Dom Pedro", Level: models.LevelFundamentalI,
		SeatsTotal: seatsTotal, SeatsTaken: seatsTaken, Active: true,
	})
	repo := newMemEnrollmentRepo()
	emitter := &captureEmitter{}
	citizens := &stubCitizens{citizens: map[string]*models.Citizen{
		"cit-1": {ID: "cit-1", Name: "Maria Souza", CPF: "12345678901", Email: "maria@example.com"},
	}}
	ledger := newTestSchoolService(schoolRepo)
	svc := NewEnrollmentService(repo, citizens, ledger, nil, emitter, nil, nil)
	return &enrollmentFixture{svc: svc, repo: repo, schoolRepo: schoolRepo, emitter: emitter}
}

func (f *enrollmentFixture) create(t *testing.T) *models.EnrollmentDetail {
	t.Helper()
	detail, err := f.svc.Create(context.Background(), CreateEnrollmentRequest{
		CitizenID:   "cit-1",
		SchoolID:    "sch-1",
		StudentName: "João Souza",
		BirthDate:   "2017-03-15",
		Level:       models.LevelFundamentalI,
		Grade:       "2º ano",
	})
	require.NoError(t, err)
	return detail
}

func (f *enrollmentFixture) seatsTaken(t *testing.T) int {
	t.Helper()
	school, err := f.schoolRepo.FindByID(context.Background(), "sch-1")
	require.NoError(t, err)
	return school.SeatsTaken
}

func TestEnrollmentServiceCreate(t *testing.T) {
	f := newEnrollmentFixture(t, 10, 0)

	detail := f.create(t)
	assert.True(t, strings.HasPrefix(detail.Protocol, "MAT"))
	assert.Equal(t, models.EnrollmentStatusPending, detail.Status)
	assert.False(t, detail.SeatDebited)
	assert.Equal(t, 0, f.seatsTaken(t), "registration must not consume a seat")

	messages := f.emitter.all()
	require.Len(t, messages, 1)
	assert.Equal(t, "cit-1", messages[0].CitizenID)
	assert.Equal(t, "Matrícula Registrada", messages[0].Title)
	assert.Equal(t, models.NotificationSuccess, messages[0].Kind)
	assert.Contains(t, messages[0].Body, detail.Protocol)
}

func TestEnrollmentServiceCreateValidation(t *testing.T) {
	f := newEnrollmentFixture(t, 10, 0)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateEnrollmentRequest{SchoolID: "sch-1", StudentName: "João", Level: models.LevelFundamentalI})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = f.svc.Create(ctx, CreateEnrollmentRequest{CitizenID: "cit-1", SchoolID: "sch-1", StudentName: "João", Level: "SUPERIOR"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = f.svc.Create(ctx, CreateEnrollmentRequest{CitizenID: "ghost", SchoolID: "sch-1", StudentName: "João", Level: models.LevelFundamentalI})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	_, err = f.svc.Create(ctx, CreateEnrollmentRequest{CitizenID: "cit-1", SchoolID: "ghost", StudentName: "João", Level: models.LevelFundamentalI})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceCreateSchoolFull(t *testing.T) {
	f := newEnrollmentFixture(t, 3, 3)

	_, err := f.svc.Create(context.Background(), CreateEnrollmentRequest{
		CitizenID: "cit-1", SchoolID: "sch-1", StudentName: "João", Level: models.LevelFundamentalI,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSeatsExhausted))

	enrollments, total, listErr := f.repo.List(context.Background(), models.EnrollmentFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, enrollments)
	assert.Zero(t, total)
	assert.Empty(t, f.emitter.all())
}

func TestEnrollmentServiceApproveDebitsSeatOnce(t *testing.T) {
	f := newEnrollmentFixture(t, 10, 0)
	ctx := context.Background()
	detail := f.create(t)

	approved, err := f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, approved.Status)
	assert.True(t, approved.SeatDebited)
	assert.Equal(t, 1, f.seatsTaken(t))

	// Re-approving is an idempotent no-op: no extra seat, no extra notification.
	before := len(f.emitter.all())
	again, err := f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, again.Status)
	assert.Equal(t, 1, f.seatsTaken(t))
	assert.Len(t, f.emitter.all(), before)
}

func TestEnrollmentServiceApproveSeatsExhausted(t *testing.T) {
	f := newEnrollmentFixture(t, 1, 0)
	ctx := context.Background()
	first := f.create(t)
	second := f.create(t)

	_, err := f.svc.Transition(ctx, first.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, second.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSeatsExhausted))

	// The losing enrollment keeps its previous status and debit latch.
	loser, findErr := f.repo.FindByID(ctx, second.ID)
	require.NoError(t, findErr)
	assert.Equal(t, models.EnrollmentStatusPending, loser.Status)
	assert.False(t, loser.SeatDebited)
	assert.Equal(t, 1, f.seatsTaken(t))
}

func TestEnrollmentServiceInvalidTransitions(t *testing.T) {
	f := newEnrollmentFixture(t, 10, 0)
	ctx := context.Background()
	detail := f.create(t)

	_, err := f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusRejected})
	require.NoError(t, err)

	// Rejected is terminal.
	_, err = f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))

	_, err = f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: "INEXISTENTE"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))

	_, err = f.svc.Transition(ctx, "missing", TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceCancelKeepsSeat(t *testing.T) {
	f := newEnrollmentFixture(t, 10, 0)
	ctx := context.Background()
	detail := f.create(t)

	_, err := f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	require.NoError(t, err)
	require.Equal(t, 1, f.seatsTaken(t))

	cancelled, err := f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelled, cancelled.Status)

	// Cancelling an approved enrollment does not return the seat.
	assert.Equal(t, 1, f.seatsTaken(t))
}

func TestEnrollmentServiceLifecycle(t *testing.T) {
	f := newEnrollmentFixture(t, 2, 0)
	ctx := context.Background()
	detail := f.create(t)

	reviewed, err := f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusUnderReview})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusUnderReview, reviewed.Status)
	assert.Equal(t, 0, f.seatsTaken(t))

	approved, err := f.svc.Transition(ctx, detail.ID, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, approved.Status)
	assert.Equal(t, 1, f.seatsTaken(t))

	// Registration + two status changes.
	messages := f.emitter.all()
	require.Len(t, messages, 3)
	assert.Equal(t, "Status da Matrícula Atualizado", messages[2].Title)
	assert.Contains(t, messages[2].Body, "Aprovada")
}

func TestEnrollmentServiceConcurrentApprovals(t *testing.T) {
	f := newEnrollmentFixture(t, 1, 0)
	ctx := context.Background()
	first := f.create(t)
	second := f.create(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.svc.Transition(ctx, id, TransitionEnrollmentRequest{Status: models.EnrollmentStatusApproved})
		}(i, id)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, appErrors.HasCode(err, appErrors.ErrSeatsExhausted))
		}
	}
	assert.Equal(t, 1, winners, "a single seat admits a single approval")
	assert.Equal(t, 1, f.seatsTaken(t))
}

func TestEnrollmentServiceGetByProtocol(t *testing.T) {
	f := newEnrollmentFixture(t, 10, 0)
	detail := f.create(t)

	found, err := f.svc.GetByProtocol(context.Background(), detail.Protocol)
	require.NoError(t, err)
	assert.Equal(t, detail.ID, found.ID)

	_, err = f.svc.GetByProtocol(context.Background(), "MAT0000000000000")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceReceipt(t *testing.T) {
	f := newEnrollmentFixture(t, 10, 0)
	detail := f.create(t)

	doc, err := f.svc.Receipt(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.True(t, len(doc) > 0)
	assert.Equal(t, "%PDF", string(doc[:4]))
}
