package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

// 课程的重复周几存在子表 session_repeat_days 中，查询时 LEFT JOIN 后在内存中组装

// 数据库驱动返回的时间不一定带着门户时区，读出来后统一转换，
// 保证后续所有日历日期比较（校验、展开）都发生在同一个时区里
func (r *Repository) localizeSession(s *domain.Session) {
	s.Anchor = s.Anchor.In(r.loc)
	if s.RecurringEndDate != nil {
		endDate := s.RecurringEndDate.In(r.loc)
		s.RecurringEndDate = &endDate
	}
}

func (r *Repository) scanSessionRows(rows *sql.Rows) ([]*domain.Session, error) {
	sessionsMap := make(map[int64]*domain.Session)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID               int64
			OwnerID          int64
			Title            string
			Anchor           time.Time
			MeetingLink      string
			Description      string
			IsRecurring      bool
			RecurringEndDate sql.NullTime
			CreatedAt        time.Time
			UpdatedAt        time.Time

			Day sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.OwnerID,
			&row.Title,
			&row.Anchor,
			&row.MeetingLink,
			&row.Description,
			&row.IsRecurring,
			&row.RecurringEndDate,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		session, exists := sessionsMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个课程，需要在 map 中初始化这个课程
			session = &domain.Session{
				ID:          row.ID,
				OwnerID:     row.OwnerID,
				Title:       row.Title,
				Anchor:      row.Anchor,
				MeetingLink: row.MeetingLink,
				Description: row.Description,
				IsRecurring: row.IsRecurring,
				RepeatDays:  make([]string, 0),
				CreatedAt:   row.CreatedAt,
				UpdatedAt:   row.UpdatedAt,
			}
			if row.RecurringEndDate.Valid {
				endDate := row.RecurringEndDate.Time
				session.RecurringEndDate = &endDate
			}
			sessionsMap[row.ID] = session
			order = append(order, row.ID)
		}

		// 如果 day 为空，则表示这个课程没有任何重复周几（非重复课程），跳过
		if !row.Day.Valid {
			continue
		}

		session.RepeatDays = append(session.RepeatDays, row.Day.String)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(order))
	for _, id := range order {
		session := sessionsMap[id]
		r.localizeSession(session)
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (r *Repository) GetSessionsByOwner(ownerID int64) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.owner_id,
			s.title,
			s.anchor,
			s.meeting_link,
			s.description,
			s.is_recurring,
			s.recurring_end_date,
			s.created_at,
			s.updated_at,
			srd.day
		FROM sessions s
		LEFT JOIN session_repeat_days srd ON s.id = srd.session_id
		WHERE s.owner_id = $1
		ORDER BY s.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanSessionRows(rows)
}

// GetSessionsForStudent 返回学员被分配到的所有讲师的全部课程，作为学员日历的快照
func (r *Repository) GetSessionsForStudent(studentID int64) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.owner_id,
			s.title,
			s.anchor,
			s.meeting_link,
			s.description,
			s.is_recurring,
			s.recurring_end_date,
			s.created_at,
			s.updated_at,
			srd.day
		FROM sessions s
		INNER JOIN instructor_students ist ON s.owner_id = ist.instructor_id
		LEFT JOIN session_repeat_days srd ON s.id = srd.session_id
		WHERE ist.student_id = $1
		ORDER BY s.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanSessionRows(rows)
}

func (r *Repository) GetSessionByID(id int64) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.owner_id,
			s.title,
			s.anchor,
			s.meeting_link,
			s.description,
			s.is_recurring,
			s.recurring_end_date,
			s.created_at,
			s.updated_at,
			srd.day
		FROM sessions s
		LEFT JOIN session_repeat_days srd ON s.id = srd.session_id
		WHERE s.id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions, err := r.scanSessionRows(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, sql.ErrNoRows
	}

	return sessions[0], nil
}

func (r *Repository) CreateSession(s *domain.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO sessions (owner_id, title, anchor, meeting_link, description, is_recurring, recurring_end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	params := []any{s.OwnerID, s.Title, s.Anchor, s.MeetingLink, s.Description, s.IsRecurring, s.RecurringEndDate, s.CreatedAt, s.UpdatedAt}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&s.ID); err != nil {
		return err
	}

	for _, day := range s.RepeatDays {
		query = `
			INSERT INTO session_repeat_days (session_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, s.ID, day); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateSession(s *domain.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE sessions
		SET
			title = $1,
			anchor = $2,
			meeting_link = $3,
			description = $4,
			is_recurring = $5,
			recurring_end_date = $6,
			updated_at = $7
		WHERE id = $8
		RETURNING id
	`
	params := []any{s.Title, s.Anchor, s.MeetingLink, s.Description, s.IsRecurring, s.RecurringEndDate, s.UpdatedAt, s.ID}
	var id int64
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&id); err != nil {
		return err
	}

	// 重复周几整体换掉：先删后插比逐条对比省事得多
	query = `
		DELETE FROM session_repeat_days WHERE session_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, s.ID); err != nil {
		return err
	}

	for _, day := range s.RepeatDays {
		query = `
			INSERT INTO session_repeat_days (session_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, s.ID, day); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSession(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM sessions WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
