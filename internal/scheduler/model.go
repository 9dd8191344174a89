package scheduler

import (
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/fanout"
)

type SessionStore interface {
	CreateSession(s *domain.Session) error
	UpdateSession(s *domain.Session) error
	DeleteSession(id int64) error
	GetSessionByID(id int64) (*domain.Session, error)
}

type NotificationSender interface {
	Fanout(recipientIDs []int64, msg fanout.Message) *fanout.Report
}

// SessionPatch 表示部分更新，nil 字段保持原值不变。
// RecurringEndDate 的 nil 同样表示不变，所以清空结束日期需要显式置位 ClearRecurringEndDate。
type SessionPatch struct {
	Title                 *string
	Anchor                *time.Time
	MeetingLink           *string
	Description           *string
	IsRecurring           *bool
	RepeatDays            []string
	RecurringEndDate      *time.Time
	ClearRecurringEndDate bool
}
