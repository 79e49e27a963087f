package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
)

// ServiceRequestRepository handles persistence of service tickets.
type ServiceRequestRepository struct {
	db *sqlx.DB
}

// NewServiceRequestRepository constructs the repository.
func NewServiceRequestRepository(db *sqlx.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

const requestColumns = `id, protocolo, cidadao_id, tipo_servico, descricao, endereco, bairro,
        ponto_referencia, prioridade, status, data_solicitacao, data_atualizacao, data_conclusao`

// Create persists a new service request.
func (r *ServiceRequestRepository) Create(ctx context.Context, request *models.ServiceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.RequestedAt.IsZero() {
		request.RequestedAt = now
	}
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.RequestStatusOpen
	}
	const query = `INSERT INTO solicitacoes_servico (id, protocolo, cidadao_id, tipo_servico, descricao,
        endereco, bairro, ponto_referencia, prioridade, status, data_solicitacao, data_atualizacao, data_conclusao)
        VALUES (:id, :protocolo, :cidadao_id, :tipo_servico, :descricao,
        :endereco, :bairro, :ponto_referencia, :prioridade, :status, :data_solicitacao, :data_atualizacao, :data_conclusao)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create service request: %w", err)
	}
	return nil
}

// FindByID returns a service request by ID.
func (r *ServiceRequestRepository) FindByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM solicitacoes_servico WHERE id = $1", requestColumns)
	var request models.ServiceRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByProtocol returns a service request by its tracking protocol.
func (r *ServiceRequestRepository) FindByProtocol(ctx context.Context, protocol string) (*models.ServiceRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM solicitacoes_servico WHERE protocolo = $1", requestColumns)
	var request models.ServiceRequest
	if err := r.db.GetContext(ctx, &request, query, protocol); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns service requests filtered by the provided criteria.
func (r *ServiceRequestRepository) List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	var conditions []string
	var args []interface{}

	if filter.CitizenID != "" {
		conditions = append(conditions, fmt.Sprintf("cidadao_id = $%d", len(args)+1))
		args = append(args, filter.CitizenID)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("tipo_servico = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM solicitacoes_servico%s ORDER BY data_solicitacao DESC LIMIT %d OFFSET %d",
		requestColumns, clause, size, offset)

	var requests []models.ServiceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list service requests: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM solicitacoes_servico" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count service requests: %w", err)
	}
	return requests, total, nil
}

// UpdateStatus updates status and completion timestamp for a ticket.
func (r *ServiceRequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus, completedAt *time.Time) error {
	const query = `UPDATE solicitacoes_servico
        SET status = $2, data_conclusao = $3, data_atualizacao = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, completedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update service request status: %w", err)
	}
	return nil
}
