// Package scheduler 负责课程的生命周期编排：校验、落库，以及创建时的通知广播。
// 课程状态流转是 草稿 → 已保存 → (更新)* → 已删除，创建即对参与者可见。
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/fanout"
	"github.com/kohi-academy/training-portal/backend/internal/utils"
)

type Manager struct {
	store  SessionStore
	sender NotificationSender
}

func NewManager(store SessionStore, sender NotificationSender) *Manager {
	return &Manager{
		store:  store,
		sender: sender,
	}
}

// 非重复课程不使用重复相关字段，落库前统一清空，避免存进来历不明的残留值
func normalize(s *domain.Session) {
	if !s.IsRecurring {
		s.RepeatDays = nil
		s.RecurringEndDate = nil
	}
}

func newSessionMessage(s *domain.Session) fanout.Message {
	if s.IsRecurring {
		return fanout.Message{
			Title:       "新的每周直播课程",
			Description: fmt.Sprintf("讲师发布了新的每周直播课程《%s》，记得按时参加", s.Title),
			Type:        domain.NotificationTypeNewRecurringSession,
		}
	}
	return fanout.Message{
		Title:       "新的直播课程",
		Description: fmt.Sprintf("讲师发布了新的直播课程《%s》，记得按时参加", s.Title),
		Type:        domain.NotificationTypeNewSession,
	}
}

// CreateSession 校验并保存新课程，然后向参与者广播一条站内通知。
// 校验不通过时不会触碰数据库；广播的失败只记日志，不影响创建结果——
// 课程本身的存在才是事实，通知只是提示。
func (m *Manager) CreateSession(s *domain.Session, recipientIDs []int64) error {
	normalize(s)
	if err := utils.ValidateSession(s); err != nil {
		return err
	}

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	if err := m.store.CreateSession(s); err != nil {
		return err
	}

	report := m.sender.Fanout(recipientIDs, newSessionMessage(s))
	for recipientID, err := range report.Failed {
		slog.Warn("课程通知写入失败",
			"sessionID", s.ID,
			"recipientID", recipientID,
			"error", err,
		)
	}

	return nil
}

// UpdateSession 把补丁合并到已有课程上，按创建时的规则重新校验后保存。
// 更新不触发广播，避免每次编辑都打扰参与者。
func (m *Manager) UpdateSession(id int64, patch *SessionPatch) (*domain.Session, error) {
	s, err := m.store.GetSessionByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Anchor != nil {
		s.Anchor = *patch.Anchor
	}
	if patch.MeetingLink != nil {
		s.MeetingLink = *patch.MeetingLink
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.IsRecurring != nil {
		s.IsRecurring = *patch.IsRecurring
	}
	if patch.RepeatDays != nil {
		s.RepeatDays = patch.RepeatDays
	}
	if patch.ClearRecurringEndDate {
		s.RecurringEndDate = nil
	} else if patch.RecurringEndDate != nil {
		s.RecurringEndDate = patch.RecurringEndDate
	}

	normalize(s)
	if err := utils.ValidateSession(s); err != nil {
		return nil, err
	}

	s.UpdatedAt = time.Now()

	if err := m.store.UpdateSession(s); err != nil {
		return nil, err
	}

	return s, nil
}

// DeleteSession 无条件删除课程，权限判断由上层完成；删除不触发广播。
func (m *Manager) DeleteSession(id int64) error {
	return m.store.DeleteSession(id)
}
