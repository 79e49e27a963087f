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

// SchoolRepository handles persistence of schools and their seat counters.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs the repository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = `id, nome, endereco, bairro, cidade, telefone, nivel_ensino,
        vagas_totais, vagas_ocupadas, ativo, data_cadastro, data_atualizacao`

// FindByID returns a school by its ID.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	query := fmt.Sprintf("SELECT %s FROM escolas WHERE id = $1", schoolColumns)
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// List returns active schools filtered by the provided criteria.
func (r *SchoolRepository) List(ctx context.Context, filter models.SchoolFilter) ([]models.School, int, error) {
	conditions := []string{"ativo = TRUE"}
	var args []interface{}

	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("nivel_ensino = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.District != "" {
		conditions = append(conditions, fmt.Sprintf("bairro ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.District+"%")
	}
	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("nome ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.OnlyOpenSeats {
		conditions = append(conditions, "vagas_ocupadas < vagas_totais")
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM escolas%s ORDER BY nome ASC LIMIT %d OFFSET %d",
		schoolColumns, clause, size, offset)

	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM escolas" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schools: %w", err)
	}
	return schools, total, nil
}

// ListAllActive returns every active school, used for occupancy reports.
func (r *SchoolRepository) ListAllActive(ctx context.Context) ([]models.School, error) {
	query := fmt.Sprintf("SELECT %s FROM escolas WHERE ativo = TRUE ORDER BY nome ASC", schoolColumns)
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, query); err != nil {
		return nil, fmt.Errorf("list active schools: %w", err)
	}
	return schools, nil
}

// Create persists a new school record.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if school.CreatedAt.IsZero() {
		school.CreatedAt = now
	}
	school.UpdatedAt = now
	const query = `INSERT INTO escolas (id, nome, endereco, bairro, cidade, telefone, nivel_ensino,
        vagas_totais, vagas_ocupadas, ativo, data_cadastro, data_atualizacao)
        VALUES (:id, :nome, :endereco, :bairro, :cidade, :telefone, :nivel_ensino,
        :vagas_totais, :vagas_ocupadas, :ativo, :data_cadastro, :data_atualizacao)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// DebitSeat atomically takes one seat from an active school with capacity
// left. The check and the increment happen in a single conditional UPDATE so
// concurrent debits can never push vagas_ocupadas past vagas_totais. Returns
// the number of rows touched: 1 when a seat was taken, 0 when the school is
// missing, inactive or full.
func (r *SchoolRepository) DebitSeat(ctx context.Context, id string) (int64, error) {
	const query = `UPDATE escolas
        SET vagas_ocupadas = vagas_ocupadas + 1, data_atualizacao = $2
        WHERE id = $1 AND ativo = TRUE AND vagas_ocupadas < vagas_totais`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("debit seat: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("debit seat rows: %w", err)
	}
	return rows, nil
}

// UpdateSeatsTotal sets the administrative seat total. The condition keeps
// the occupied counter within the new total. Returns the rows touched: 0
// means the school is missing or the new total is below current occupancy.
func (r *SchoolRepository) UpdateSeatsTotal(ctx context.Context, id string, total int) (int64, error) {
	const query = `UPDATE escolas
        SET vagas_totais = $2, data_atualizacao = $3
        WHERE id = $1 AND vagas_ocupadas <= $2`
	res, err := r.db.ExecContext(ctx, query, id, total, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update seats total: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update seats total rows: %w", err)
	}
	return rows, nil
}
