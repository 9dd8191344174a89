package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

func (r *Repository) CreateNotification(n *domain.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO notifications (recipient_id, title, description, type, read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	args := []any{n.RecipientID, n.Title, n.Description, n.Type, n.Read}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetNotificationsByRecipient(recipientID int64) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, title, description, type, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{
			RecipientID: recipientID,
		}
		dst := []any{&n.ID, &n.Title, &n.Description, &n.Type, &n.Read, &n.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkNotificationRead 只允许接收者本人把自己的通知置为已读
func (r *Repository) MarkNotificationRead(id int64, recipientID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2
	`

	result, err := r.dbpool.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
