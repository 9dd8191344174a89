package recurrence

import (
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

// 前端传入的周几名称固定使用英文，不做国际化
var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdayNames[name]
	return day, ok
}

func containsWeekday(names []string, day time.Weekday) bool {
	for _, name := range names {
		if d, ok := weekdayNames[name]; ok && d == day {
			return true
		}
	}
	return false
}

// compareDate 只比较日历日期（年月日），忽略时刻和时区偏移带来的差异
func compareDate(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch {
	case ay != by:
		return int(ay) - int(by)
	case am != bm:
		return int(am) - int(bm)
	default:
		return ad - bd
	}
}

func makeOccurrence(s *domain.Session, date time.Time) domain.Occurrence {
	return domain.Occurrence{
		SessionID:   s.ID,
		Title:       s.Title,
		MeetingLink: s.MeetingLink,
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		Time:        s.Anchor.Format("15:04"),
	}
}

// OccursOn 判断课程在目标日期是否上课。
//
// 非重复课程只在锚点所在的日历日上课；重复课程在 [锚点日期, 结束日期] 窗口内、
// 周几命中 RepeatDays 的每一天上课。上课时刻永远取锚点的时刻。
//
// 注意锚点日期本身并不要求命中 RepeatDays：锚点只充当窗口起点和时刻模板，
// 第一次上课可以和锚点不是同一个周几。
//
// 纯函数：不修改 session，也不依赖当前时间；对每个 (课程, 日期) 组合 O(1)，
// 不会从锚点逐日枚举到目标日期。
func OccursOn(s *domain.Session, date time.Time) (domain.Occurrence, bool) {
	if !s.IsRecurring {
		if compareDate(date, s.Anchor) != 0 {
			return domain.Occurrence{}, false
		}
		return makeOccurrence(s, date), true
	}

	if compareDate(date, s.Anchor) < 0 {
		return domain.Occurrence{}, false
	}
	if s.RecurringEndDate != nil && compareDate(date, *s.RecurringEndDate) > 0 {
		return domain.Occurrence{}, false
	}
	if !containsWeekday(s.RepeatDays, date.Weekday()) {
		return domain.Occurrence{}, false
	}

	return makeOccurrence(s, date), true
}
