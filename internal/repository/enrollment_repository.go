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

// EnrollmentRepository handles persistence of school enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, protocolo, cidadao_id, escola_id, nome_aluno, data_nascimento,
        nivel_ensino, serie, status, observacoes, vaga_debitada, data_solicitacao, data_atualizacao`

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.RequestedAt.IsZero() {
		enrollment.RequestedAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	const query = `INSERT INTO matriculas (id, protocolo, cidadao_id, escola_id, nome_aluno, data_nascimento,
        nivel_ensino, serie, status, observacoes, vaga_debitada, data_solicitacao, data_atualizacao)
        VALUES (:id, :protocolo, :cidadao_id, :escola_id, :nome_aluno, :data_nascimento,
        :nivel_ensino, :serie, :status, :observacoes, :vaga_debitada, :data_solicitacao, :data_atualizacao)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM matriculas WHERE id = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByProtocol returns an enrollment by its tracking protocol.
func (r *EnrollmentRepository) FindByProtocol(ctx context.Context, protocol string) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM matriculas WHERE protocolo = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, protocol); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with citizen and school names.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT m.id, m.protocolo, m.cidadao_id, m.escola_id, m.nome_aluno, m.data_nascimento,
        m.nivel_ensino, m.serie, m.status, m.observacoes, m.vaga_debitada, m.data_solicitacao, m.data_atualizacao,
        c.nome AS cidadao_nome, e.nome AS escola_nome
        FROM matriculas m
        LEFT JOIN cidadaos c ON c.id = m.cidadao_id
        LEFT JOIN escolas e ON e.id = m.escola_id
        WHERE m.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM matriculas m
LEFT JOIN cidadaos c ON c.id = m.cidadao_id
LEFT JOIN escolas e ON e.id = m.escola_id`
	var conditions []string
	var args []interface{}

	if filter.CitizenID != "" {
		conditions = append(conditions, fmt.Sprintf("m.cidadao_id = $%d", len(args)+1))
		args = append(args, filter.CitizenID)
	}
	if filter.SchoolID != "" {
		conditions = append(conditions, fmt.Sprintf("m.escola_id = $%d", len(args)+1))
		args = append(args, filter.SchoolID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("m.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"data_solicitacao": "m.data_solicitacao",
		"nome_aluno":       "m.nome_aluno",
		"escola_nome":      "e.nome",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "data_solicitacao"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "m.data_solicitacao"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT m.id, m.protocolo, m.cidadao_id, m.escola_id, m.nome_aluno, m.data_nascimento,
        m.nivel_ensino, m.serie, m.status, m.observacoes, m.vaga_debitada, m.data_solicitacao, m.data_atualizacao,
        c.nome AS cidadao_nome, e.nome AS escola_nome
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListByCitizen returns a citizen's enrollments, newest first.
func (r *EnrollmentRepository) ListByCitizen(ctx context.Context, citizenID string) ([]models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM matriculas WHERE cidadao_id = $1 ORDER BY data_solicitacao DESC", enrollmentColumns)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, citizenID); err != nil {
		return nil, fmt.Errorf("list citizen enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateStatusFrom moves an enrollment to a new status only while it still
// holds the expected current status, optionally setting the seat-debited
// latch in the same statement. The condition serializes concurrent
// transitions on the same record; 0 rows means another writer got there
// first. The latch is never cleared once set.
func (r *EnrollmentRepository) UpdateStatusFrom(ctx context.Context, id string, from, to models.EnrollmentStatus, seatDebited bool) (int64, error) {
	const query = `UPDATE matriculas
        SET status = $3, vaga_debitada = vaga_debitada OR $4, data_atualizacao = $5
        WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, seatDebited, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update enrollment status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update enrollment status rows: %w", err)
	}
	return rows, nil
}
