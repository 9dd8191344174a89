package utils

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

func validSession() *domain.Session {
	return &domain.Session{
		OwnerID:     1,
		Title:       "拉花基础",
		Anchor:      time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
		MeetingLink: "https://meet.example.com/abc",
	}
}

func TestValidateSessionOK(t *testing.T) {
	if err := ValidateSession(validSession()); err != nil {
		t.Fatalf("合法课程不应该校验失败: %v", err)
	}

	s := validSession()
	s.IsRecurring = true
	s.RepeatDays = []string{"Monday", "Friday"}
	endDate := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	s.RecurringEndDate = &endDate
	if err := ValidateSession(s); err != nil {
		t.Fatalf("合法重复课程不应该校验失败: %v", err)
	}

	// 结束日期等于锚点日期是允许的（闭区间）
	sameDay := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	s.RecurringEndDate = &sameDay
	if err := ValidateSession(s); err != nil {
		t.Fatalf("结束日期等于锚点日期不应该校验失败: %v", err)
	}
}

func TestValidateSessionFields(t *testing.T) {
	endBeforeAnchor := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		mutate    func(s *domain.Session)
		wantField string
	}{
		{"标题为空", func(s *domain.Session) { s.Title = "  " }, "title"},
		{"锚点为空", func(s *domain.Session) { s.Anchor = time.Time{} }, "anchor"},
		{"会议链接为空", func(s *domain.Session) { s.MeetingLink = "" }, "meetingLink"},
		{"重复但没有周几", func(s *domain.Session) { s.IsRecurring = true }, "repeatDays"},
		{"非法周几名称", func(s *domain.Session) {
			s.IsRecurring = true
			s.RepeatDays = []string{"Monday", "Moonday"}
		}, "repeatDays"},
		{"结束日期早于锚点", func(s *domain.Session) { s.RecurringEndDate = &endBeforeAnchor }, "recurringEndDate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSession()
			tc.mutate(s)

			err := ValidateSession(s)
			if err == nil {
				t.Fatal("应该校验失败")
			}

			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("错误类型应该是 *domain.ValidationError, got %T", err)
			}
			if !slices.Contains(vErr.Fields, tc.wantField) {
				t.Errorf("Fields = %v, 应包含 %q", vErr.Fields, tc.wantField)
			}
		})
	}
}

func TestValidateSessionCollectsAllFields(t *testing.T) {
	s := &domain.Session{OwnerID: 1, IsRecurring: true}

	err := ValidateSession(s)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("错误类型应该是 *domain.ValidationError, got %T", err)
	}

	for _, field := range []string{"title", "anchor", "meetingLink", "repeatDays"} {
		if !slices.Contains(vErr.Fields, field) {
			t.Errorf("Fields = %v, 应包含 %q", vErr.Fields, field)
		}
	}
}
