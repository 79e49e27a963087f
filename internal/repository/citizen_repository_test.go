package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
)

func citizenRows(citizens ...models.Citizen) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "nome", "cpf", "email", "telefone", "cep", "endereco", "numero",
		"complemento", "bairro", "cidade", "estado", "data_cadastro", "data_atualizacao"})
	for _, c := range citizens {
		rows.AddRow(c.ID, c.Name, c.CPF, c.Email, c.Phone, c.ZipCode, c.Street, c.Number,
			c.Complement, c.District, c.City, c.State, time.Now(), time.Now())
	}
	return rows
}

func TestCitizenRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCitizenRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cidadaos")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	citizen := &models.Citizen{Name: "Maria Souza", CPF: "12345678901", Email: "maria@example.com"}
	require.NoError(t, repo.Create(context.Background(), citizen))
	require.NotEmpty(t, citizen.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nome, cpf, email")).
		WithArgs("12345678901").
		WillReturnRows(citizenRows(*citizen))

	found, err := repo.FindByCPF(context.Background(), "12345678901")
	require.NoError(t, err)
	require.Equal(t, citizen.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCitizenRepositoryExistsByCPF(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCitizenRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM cidadaos WHERE cpf = $1")).
		WithArgs("12345678901").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByCPF(context.Background(), "12345678901")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM cidadaos WHERE cpf = $1")).
		WithArgs("00000000000").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByCPF(context.Background(), "00000000000")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCitizenRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCitizenRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cidadaos WHERE id = $1")).
		WithArgs("cit-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.Delete(context.Background(), "cit-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cidadaos WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err = repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	require.Zero(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
