package repository

import (
	"testing"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

// 驱动返回 UTC 时间时，靠近午夜的锚点在门户时区里可能已经是第二天，
// 日期相关的比较必须在转换后进行
func TestLocalizeSessionShiftsCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	r := &Repository{loc: loc}

	// UTC 的 3 月 4 日 18:00 在 UTC+8 里是 3 月 5 日 02:00
	anchor := time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)
	endDate := time.Date(2024, time.March, 10, 16, 0, 0, 0, time.UTC)
	s := &domain.Session{
		Anchor:           anchor,
		IsRecurring:      true,
		RepeatDays:       []string{"Tuesday"},
		RecurringEndDate: &endDate,
	}

	r.localizeSession(s)

	if s.Anchor.Location() != loc {
		t.Errorf("锚点时区 = %v, want %v", s.Anchor.Location(), loc)
	}
	if got := s.Anchor.Day(); got != 5 {
		t.Errorf("锚点在门户时区的日期 = %d 号, want 5 号", got)
	}
	if !s.Anchor.Equal(anchor) {
		t.Errorf("转换时区不应该改变锚点对应的时刻")
	}

	if s.RecurringEndDate.Location() != loc {
		t.Errorf("结束日期时区 = %v, want %v", s.RecurringEndDate.Location(), loc)
	}
	if !s.RecurringEndDate.Equal(endDate) {
		t.Errorf("转换时区不应该改变结束日期对应的时刻")
	}
}

func TestLocalizeSessionWithoutEndDate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	r := &Repository{loc: loc}

	s := &domain.Session{
		Anchor: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
	}

	r.localizeSession(s)

	if s.RecurringEndDate != nil {
		t.Errorf("没有结束日期的课程转换后不应该多出结束日期")
	}
}
