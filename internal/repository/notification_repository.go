package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
)

// NotificationRepository handles persistence of citizen inbox notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, cidadao_id, titulo, mensagem, tipo, lida, data_criacao`

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notificacoes (id, cidadao_id, titulo, mensagem, tipo, lida, data_criacao)
        VALUES (:id, :cidadao_id, :titulo, :mensagem, :tipo, :lida, :data_criacao)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByCitizen returns a citizen's notifications, newest first.
func (r *NotificationRepository) ListByCitizen(ctx context.Context, citizenID string) ([]models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notificacoes WHERE cidadao_id = $1 ORDER BY data_criacao DESC", notificationColumns)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, citizenID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// ListUnreadByCitizen returns a citizen's unread notifications, newest first.
func (r *NotificationRepository) ListUnreadByCitizen(ctx context.Context, citizenID string) ([]models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notificacoes WHERE cidadao_id = $1 AND lida = FALSE ORDER BY data_criacao DESC", notificationColumns)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, citizenID); err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread returns how many unread notifications a citizen has.
func (r *NotificationRepository) CountUnread(ctx context.Context, citizenID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM notificacoes WHERE cidadao_id = $1 AND lida = FALSE`
	if err := r.db.GetContext(ctx, &count, query, citizenID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags a single notification as read. Returns the rows touched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE notificacoes SET lida = TRUE WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notification read rows: %w", err)
	}
	return rows, nil
}

// MarkAllRead flags all of a citizen's notifications as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, citizenID string) error {
	const query = `UPDATE notificacoes SET lida = TRUE WHERE cidadao_id = $1 AND lida = FALSE`
	if _, err := r.db.ExecContext(ctx, query, citizenID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
