package recurrence

import (
	"sort"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

type DayCell struct {
	Date        time.Time           `json:"date"`
	InMonth     bool                `json:"inMonth"`
	Occurrences []domain.Occurrence `json:"occurrences"`
}

type Week [7]DayCell

// occurrencesOn 收集某一天的全部上课记录。
// 同一天内按上课时刻升序排列；时刻相同时保持快照中的先后顺序（稳定排序保证）。
func occurrencesOn(date time.Time, sessions []*domain.Session) []domain.Occurrence {
	occurrences := make([]domain.Occurrence, 0)
	for _, s := range sessions {
		if occ, ok := OccursOn(s, date); ok {
			occurrences = append(occurrences, occ)
		}
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Time < occurrences[j].Time
	})

	return occurrences
}

// BuildMonthGrid 把一个月展开成日历网格：从目标月 1 号之前（含当天）最近的周日开始，
// 到目标月最后一天之后（含当天）最近的周六结束，因此总格子数一定是 7 的倍数。
// 月份之外的格子同样会填充上课记录，只是 InMonth 为 false，由前端弱化显示。
//
// 这是一个对已取快照的纯变换，不做任何 I/O，可以在每次渲染时重复调用。
func BuildMonthGrid(year int, month time.Month, sessions []*domain.Session, loc *time.Location) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	weeks := make([]Week, 0, 6)
	day := start
	for !day.After(end) {
		var week Week
		for i := 0; i < 7; i++ {
			week[i] = DayCell{
				Date:        day,
				InMonth:     day.Year() == year && day.Month() == month,
				Occurrences: occurrencesOn(day, sessions),
			}
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}

	return weeks
}

// ListOccurrences 返回日期区间（两端含）内的平铺上课记录，供列表视图使用。
// 结果按 (日期, 时刻, 快照顺序) 排序。
func ListOccurrences(start, end time.Time, sessions []*domain.Session) []domain.Occurrence {
	all := make([]domain.Occurrence, 0)
	for day := start; compareDate(day, end) <= 0; day = day.AddDate(0, 0, 1) {
		all = append(all, occurrencesOn(day, sessions)...)
	}
	return all
}
