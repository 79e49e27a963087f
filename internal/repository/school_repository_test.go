package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func schoolRows(schools ...models.School) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "nome", "endereco", "bairro", "cidade", "telefone", "nivel_ensino",
		"vagas_totais", "vagas_ocupadas", "ativo", "data_cadastro", "data_atualizacao"})
	for _, s := range schools {
		rows.AddRow(s.ID, s.Name, s.Street, s.District, s.City, s.Phone, s.Level,
			s.SeatsTotal, s.SeatsTaken, s.Active, time.Now(), time.Now())
	}
	return rows
}

func TestSchoolRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSchoolRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nome, endereco, bairro")).
		WithArgs("sch-1").
		WillReturnRows(schoolRows(models.School{
			ID: "sch-1", Name: "EMEF Dom Pedro", Level: models.LevelFundamentalI,
			SeatsTotal: 100, SeatsTaken: 40, Active: true,
		}))

	school, err := repo.FindByID(context.Background(), "sch-1")
	require.NoError(t, err)
	require.Equal(t, "EMEF Dom Pedro", school.Name)
	require.Equal(t, 60, school.SeatsAvailable())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSchoolRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nome, endereco, bairro")).
		WithArgs(models.LevelInfantil, "%Vila Mariana%").
		WillReturnRows(schoolRows(models.School{
			ID: "sch-2", Name: "EMEI Jardim", Level: models.LevelInfantil,
			SeatsTotal: 50, SeatsTaken: 10, Active: true,
		}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM escolas")).
		WithArgs(models.LevelInfantil, "%Vila Mariana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	schools, total, err := repo.List(context.Background(), models.SchoolFilter{
		Level:    models.LevelInfantil,
		District: "Vila Mariana",
	})
	require.NoError(t, err)
	require.Len(t, schools, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSchoolRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO escolas")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	school := &models.School{
		Name: "EMEF Nova", Level: models.LevelFundamentalII, SeatsTotal: 120, Active: true,
	}
	require.NoError(t, repo.Create(context.Background(), school))
	require.NotEmpty(t, school.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryDebitSeat(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSchoolRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE escolas")).
		WithArgs("sch-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.DebitSeat(context.Background(), "sch-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	// A full school matches no row.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE escolas")).
		WithArgs("sch-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err = repo.DebitSeat(context.Background(), "sch-1")
	require.NoError(t, err)
	require.Zero(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryUpdateSeatsTotal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSchoolRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE escolas")).
		WithArgs("sch-1", 80, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateSeatsTotal(context.Background(), "sch-1", 80)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
