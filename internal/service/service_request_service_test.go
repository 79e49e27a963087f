package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
)

type memServiceRequestRepo struct {
	requests map[string]*models.ServiceRequest
	nextID   int
}

func newMemServiceRequestRepo() *memServiceRequestRepo {
	return &memServiceRequestRepo{requests: make(map[string]*models.ServiceRequest)}
}

func (r *memServiceRequestRepo) Create(_ context.Context, request *models.ServiceRequest) error {
	if request.ID == "" {
		r.nextID++
		request.ID = fmt.Sprintf("req-%03d", r.nextID)
	}
	copied := *request
	r.requests[request.ID] = &copied
	return nil
}

func (r *memServiceRequestRepo) FindByID(_ context.Context, id string) (*models.ServiceRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (r *memServiceRequestRepo) FindByProtocol(_ context.Context, protocol string) (*models.ServiceRequest, error) {
	for _, request := range r.requests {
		if request.Protocol == protocol {
			copied := *request
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memServiceRequestRepo) List(_ context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	var out []models.ServiceRequest
	for _, request := range r.requests {
		if filter.CitizenID != "" && request.CitizenID != filter.CitizenID {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (r *memServiceRequestRepo) UpdateStatus(_ context.Context, id string, status models.RequestStatus, completedAt *time.Time) error {
	request, ok := r.requests[id]
	if !ok {
		return sql.ErrNoRows
	}
	request.Status = status
	request.CompletedAt = completedAt
	return nil
}

func newServiceRequestFixture() (*ServiceRequestService, *memServiceRequestRepo, *captureEmitter) {
	repo := newMemServiceRequestRepo()
	emitter := &captureEmitter{}
	citizens := &stubCitizens{citizens: map[string]*models.Citizen{
		"cit-1": {ID: "cit-1", Name: "Maria Souza", CPF: "12345678901"},
	}}
	svc := NewServiceRequestService(repo, citizens, nil, emitter, nil, nil)
	return svc, repo, emitter
}

func TestServiceRequestCreate(t *testing.T) {
	svc, _, emitter := newServiceRequestFixture()

	request, err := svc.Create(context.Background(), CreateServiceRequestRequest{
		CitizenID:   "cit-1",
		Type:        models.ServiceTreePruning,
		Description: "Galhos sobre a fiação na Rua das Flores",
		District:    "Vila Mariana",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(request.Protocol, "POD"))
	assert.Equal(t, models.RequestStatusOpen, request.Status)
	assert.Equal(t, models.PriorityMedium, request.Priority, "priority defaults to MEDIA")

	messages := emitter.all()
	require.Len(t, messages, 1)
	assert.Equal(t, "Solicitação Registrada", messages[0].Title)
	assert.Equal(t, models.NotificationSuccess, messages[0].Kind)
	assert.Contains(t, messages[0].Body, "Poda de Árvore")
	assert.Contains(t, messages[0].Body, request.Protocol)
}

func TestServiceRequestCreateProtocolPrefixes(t *testing.T) {
	svc, _, _ := newServiceRequestFixture()
	ctx := context.Background()

	tests := []struct {
		serviceType models.ServiceType
		prefix      string
	}{
		{models.ServiceTreePruning, "POD"},
		{models.ServiceStreetLighting, "ILU"},
		{models.ServicePublicWorks, "OBR"},
		{models.ServiceStreetCleaning, "LIM"},
	}
	for _, tt := range tests {
		request, err := svc.Create(ctx, CreateServiceRequestRequest{
			CitizenID: "cit-1", Type: tt.serviceType, Description: "teste",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(request.Protocol, tt.prefix))
	}
}

func TestServiceRequestCreateValidation(t *testing.T) {
	svc, _, emitter := newServiceRequestFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateServiceRequestRequest{CitizenID: "cit-1", Type: "CAPINA", Description: "x"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, CreateServiceRequestRequest{CitizenID: "cit-1", Type: models.ServicePublicWorks, Description: "x", Priority: "URGENTE"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, CreateServiceRequestRequest{CitizenID: "ghost", Type: models.ServicePublicWorks, Description: "x"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	assert.Empty(t, emitter.all())
}

func TestServiceRequestUpdateStatus(t *testing.T) {
	svc, repo, emitter := newServiceRequestFixture()
	ctx := context.Background()

	request, err := svc.Create(ctx, CreateServiceRequestRequest{
		CitizenID: "cit-1", Type: models.ServiceStreetLighting, Description: "Poste apagado",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, request.ID, UpdateRequestStatusRequest{Status: models.RequestStatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	completed, err := svc.UpdateStatus(ctx, request.ID, UpdateRequestStatusRequest{Status: models.RequestStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// Unlike enrollments, the ticketing desk allows any recognised change,
	// even reopening a completed ticket.
	reopened, err := svc.UpdateStatus(ctx, request.ID, UpdateRequestStatusRequest{Status: models.RequestStatusOpen})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusOpen, reopened.Status)

	_, err = svc.UpdateStatus(ctx, request.ID, UpdateRequestStatusRequest{Status: "INEXISTENTE"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.UpdateStatus(ctx, "missing", UpdateRequestStatusRequest{Status: models.RequestStatusOpen})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	stored, err := repo.FindByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusOpen, stored.Status)

	// Creation notice plus one per status change.
	messages := emitter.all()
	require.Len(t, messages, 4)
	assert.Equal(t, "Status da Solicitação Atualizado", messages[1].Title)
	assert.Contains(t, messages[2].Body, "Concluída")
}

func TestServiceRequestGetByProtocol(t *testing.T) {
	svc, _, _ := newServiceRequestFixture()
	ctx := context.Background()

	request, err := svc.Create(ctx, CreateServiceRequestRequest{
		CitizenID: "cit-1", Type: models.ServiceStreetCleaning, Description: "Entulho na calçada",
	})
	require.NoError(t, err)

	found, err := svc.GetByProtocol(ctx, request.Protocol)
	require.NoError(t, err)
	assert.Equal(t, request.ID, found.ID)

	_, err = svc.GetByProtocol(ctx, "LIM0000000000000")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
