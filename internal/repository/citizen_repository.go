package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
)

// CitizenRepository handles persistence of citizen records.
type CitizenRepository struct {
	db *sqlx.DB
}

// NewCitizenRepository constructs the repository.
func NewCitizenRepository(db *sqlx.DB) *CitizenRepository {
	return &CitizenRepository{db: db}
}

const citizenColumns = `id, nome, cpf, email, telefone, cep, endereco, numero, complemento,
        bairro, cidade, estado, data_cadastro, data_atualizacao`

// FindByID returns a citizen by ID.
func (r *CitizenRepository) FindByID(ctx context.Context, id string) (*models.Citizen, error) {
	query := fmt.Sprintf("SELECT %s FROM cidadaos WHERE id = $1", citizenColumns)
	var citizen models.Citizen
	if err := r.db.GetContext(ctx, &citizen, query, id); err != nil {
		return nil, err
	}
	return &citizen, nil
}

// FindByCPF returns a citizen by CPF.
func (r *CitizenRepository) FindByCPF(ctx context.Context, cpf string) (*models.Citizen, error) {
	query := fmt.Sprintf("SELECT %s FROM cidadaos WHERE cpf = $1", citizenColumns)
	var citizen models.Citizen
	if err := r.db.GetContext(ctx, &citizen, query, cpf); err != nil {
		return nil, err
	}
	return &citizen, nil
}

// List returns citizens with a total count for pagination.
func (r *CitizenRepository) List(ctx context.Context, page, size int) ([]models.Citizen, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM cidadaos ORDER BY nome ASC LIMIT %d OFFSET %d",
		citizenColumns, size, offset)
	var citizens []models.Citizen
	if err := r.db.SelectContext(ctx, &citizens, query); err != nil {
		return nil, 0, fmt.Errorf("list citizens: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM cidadaos"); err != nil {
		return nil, 0, fmt.Errorf("count citizens: %w", err)
	}
	return citizens, total, nil
}

// ExistsByCPF reports whether a citizen is already registered with the CPF.
func (r *CitizenRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM cidadaos WHERE cpf = $1 LIMIT 1", cpf)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check cpf: %w", err)
	}
	return true, nil
}

// ExistsByEmail reports whether a citizen is already registered with the email.
func (r *CitizenRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM cidadaos WHERE email = $1 LIMIT 1", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create persists a new citizen record.
func (r *CitizenRepository) Create(ctx context.Context, citizen *models.Citizen) error {
	if citizen.ID == "" {
		citizen.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if citizen.CreatedAt.IsZero() {
		citizen.CreatedAt = now
	}
	citizen.UpdatedAt = now
	const query = `INSERT INTO cidadaos (id, nome, cpf, email, telefone, cep, endereco, numero,
        complemento, bairro, cidade, estado, data_cadastro, data_atualizacao)
        VALUES (:id, :nome, :cpf, :email, :telefone, :cep, :endereco, :numero,
        :complemento, :bairro, :cidade, :estado, :data_cadastro, :data_atualizacao)`
	if _, err := r.db.NamedExecContext(ctx, query, citizen); err != nil {
		return fmt.Errorf("create citizen: %w", err)
	}
	return nil
}

// Update rewrites a citizen's contact and address data. CPF and email are
// immutable after registration.
func (r *CitizenRepository) Update(ctx context.Context, citizen *models.Citizen) error {
	citizen.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cidadaos SET nome = :nome, telefone = :telefone, cep = :cep,
        endereco = :endereco, numero = :numero, complemento = :complemento, bairro = :bairro,
        cidade = :cidade, estado = :estado, data_atualizacao = :data_atualizacao
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, citizen); err != nil {
		return fmt.Errorf("update citizen: %w", err)
	}
	return nil
}

// Delete removes a citizen record.
func (r *CitizenRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cidadaos WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete citizen: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete citizen rows: %w", err)
	}
	return rows, nil
}
