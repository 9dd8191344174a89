package utils

import (
	"slices"
	"strings"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/recurrence"
)

func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// ValidateSession 在触碰数据库之前完成课程数据的业务校验。
// 任何一项不通过都会返回 *domain.ValidationError，其中列出全部不合法的字段。
func ValidateSession(s *domain.Session) error {
	fields := make([]string, 0)
	reasons := make([]string, 0)

	report := func(field string, reason string) {
		if !slices.Contains(fields, field) {
			fields = append(fields, field)
		}
		reasons = append(reasons, reason)
	}

	if strings.TrimSpace(s.Title) == "" {
		report("title", "课程标题不能为空")
	}
	if s.Anchor.IsZero() {
		report("anchor", "上课时间不能为空")
	}
	if strings.TrimSpace(s.MeetingLink) == "" {
		report("meetingLink", "会议链接不能为空")
	}

	if s.IsRecurring {
		if len(s.RepeatDays) == 0 {
			report("repeatDays", "重复课程必须至少选择一个上课周几")
		}
		for _, name := range s.RepeatDays {
			if _, ok := recurrence.ParseWeekday(name); !ok {
				report("repeatDays", "无法识别的周几名称: "+name)
			}
		}
	}

	if s.RecurringEndDate != nil && !s.Anchor.IsZero() && dateBefore(*s.RecurringEndDate, s.Anchor) {
		report("recurringEndDate", "重复结束日期不能早于上课开始日期")
	}

	if len(fields) > 0 {
		return &domain.ValidationError{
			Fields:  fields,
			Message: strings.Join(reasons, "；"),
		}
	}

	return nil
}
