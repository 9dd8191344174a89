package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

// GetAssignedStudents 返回分配给某个讲师的全部在读学员，即该讲师课程通知的参与者名单
func (r *Repository) GetAssignedStudents(instructorID int64) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT u.id, u.username, u.password_hash, u.full_name, u.email, u.role, u.is_active, u.created_at, u.version
		FROM instructor_students ist
		INNER JOIN users u ON ist.student_id = u.id
		WHERE ist.instructor_id = $1 AND u.is_active = TRUE
		ORDER BY u.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		students = append(students, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func (r *Repository) AssignStudent(instructorID int64, studentID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO instructor_students (instructor_id, student_id)
		VALUES ($1, $2)
	`

	if _, err := r.dbpool.ExecContext(ctx, query, instructorID, studentID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UnassignStudent(instructorID int64, studentID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM instructor_students WHERE instructor_id = $1 AND student_id = $2
	`

	result, err := r.dbpool.ExecContext(ctx, query, instructorID, studentID)
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
