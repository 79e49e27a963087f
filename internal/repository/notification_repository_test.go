package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
)

func TestNotificationRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notificacoes")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	notification := &models.Notification{
		CitizenID: "cit-1",
		Title:     "Matrícula Registrada",
		Message:   "Sua solicitação de matrícula foi registrada com protocolo MAT1700000000000",
		Kind:      models.NotificationSuccess,
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	require.NotEmpty(t, notification.ID)
	require.False(t, notification.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "cidadao_id", "titulo", "mensagem", "tipo", "lida", "data_criacao"}).
		AddRow(notification.ID, "cit-1", notification.Title, notification.Message, notification.Kind, false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, cidadao_id, titulo")).
		WithArgs("cit-1").
		WillReturnRows(rows)

	notifications, err := repo.ListByCitizen(context.Background(), "cit-1")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.False(t, notifications[0].Read)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryCountUnread(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notificacoes")).
		WithArgs("cit-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(context.Background(), "cit-1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notificacoes SET lida = TRUE WHERE id = $1")).
		WithArgs("n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.MarkRead(context.Background(), "n-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notificacoes SET lida = TRUE WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err = repo.MarkRead(context.Background(), "missing")
	require.NoError(t, err)
	require.Zero(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
