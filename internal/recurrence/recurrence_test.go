package recurrence

import (
	"testing"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestOccursOnOneOff(t *testing.T) {
	s := &domain.Session{
		ID:          1,
		Title:       "拉花基础",
		Anchor:      time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
		MeetingLink: "https://meet.example.com/abc",
	}

	testCases := []struct {
		name   string
		target time.Time
		want   bool
	}{
		{"锚点当天", date(2024, time.March, 4), true},
		{"锚点前一天", date(2024, time.March, 3), false},
		{"锚点后一天", date(2024, time.March, 5), false},
		{"下一周同一个周几", date(2024, time.March, 11), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			occ, ok := OccursOn(s, tc.target)
			if ok != tc.want {
				t.Fatalf("OccursOn(%s) = %v, want %v", tc.target.Format("2006-01-02"), ok, tc.want)
			}
			if ok && occ.Time != "10:00" {
				t.Errorf("Time = %q, want %q", occ.Time, "10:00")
			}
		})
	}
}

func TestOccursOnWeekly(t *testing.T) {
	// 2024-01-01 是周一
	s := &domain.Session{
		ID:          2,
		Title:       "手冲冲煮",
		Anchor:      time.Date(2024, time.January, 1, 9, 30, 0, 0, time.UTC),
		IsRecurring: true,
		RepeatDays:  []string{"Monday", "Wednesday"},
	}

	// 从锚点起六周内，周一和周三上课，其余周几不上课
	for day := date(2024, time.January, 1); day.Before(date(2024, time.February, 12)); day = day.AddDate(0, 0, 1) {
		occ, ok := OccursOn(s, day)
		wantOk := day.Weekday() == time.Monday || day.Weekday() == time.Wednesday
		if ok != wantOk {
			t.Fatalf("OccursOn(%s, %s) = %v, want %v", day.Format("2006-01-02"), day.Weekday(), ok, wantOk)
		}
		if ok && occ.Time != "09:30" {
			t.Errorf("Time = %q, want %q", occ.Time, "09:30")
		}
	}

	// 锚点之前的日期即使周几命中也不上课
	if _, ok := OccursOn(s, date(2023, time.December, 25)); ok {
		t.Error("锚点之前不应该有上课记录")
	}
}

func TestOccursOnWeeklyWithEndDate(t *testing.T) {
	endDate := date(2024, time.January, 15)
	s := &domain.Session{
		ID:               3,
		Title:            "意式萃取",
		Anchor:           time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC),
		IsRecurring:      true,
		RepeatDays:       []string{"Monday", "Wednesday"},
		RecurringEndDate: &endDate,
	}

	// 结束日期当天（周一）是最后一次上课，包含端点
	if _, ok := OccursOn(s, date(2024, time.January, 15)); !ok {
		t.Error("结束日期当天应该上课")
	}

	// 结束日期之后即使周几命中也不上课
	if _, ok := OccursOn(s, date(2024, time.January, 17)); ok {
		t.Error("结束日期之后不应该上课")
	}
	if _, ok := OccursOn(s, date(2024, time.January, 22)); ok {
		t.Error("结束日期之后不应该上课")
	}
}

func TestOccursOnAnchorWeekdayNotRequired(t *testing.T) {
	// 锚点是周二，但重复日只有周五：锚点只提供窗口起点和时刻，本身不上课
	s := &domain.Session{
		ID:          4,
		Title:       "杯测入门",
		Anchor:      time.Date(2024, time.January, 2, 19, 0, 0, 0, time.UTC),
		IsRecurring: true,
		RepeatDays:  []string{"Friday"},
	}

	if _, ok := OccursOn(s, date(2024, time.January, 2)); ok {
		t.Error("锚点当天周几不匹配时不应该上课")
	}

	occ, ok := OccursOn(s, date(2024, time.January, 5))
	if !ok {
		t.Fatal("窗口内第一个周五应该上课")
	}
	if occ.Time != "19:00" {
		t.Errorf("Time = %q, want %q", occ.Time, "19:00")
	}
}

func TestBuildMonthGridFebruary2024(t *testing.T) {
	// 2024 年 2 月（闰年）从周四开始，网格应从 2024-01-28（周日）铺到 2024-03-02（周六）
	weeks := BuildMonthGrid(2024, time.February, nil, time.UTC)

	if len(weeks) != 5 {
		t.Fatalf("len(weeks) = %d, want 5", len(weeks))
	}

	firstCell := weeks[0][0]
	if !firstCell.Date.Equal(date(2024, time.January, 28)) {
		t.Errorf("第一个格子 = %s, want 2024-01-28", firstCell.Date.Format("2006-01-02"))
	}
	if firstCell.InMonth {
		t.Error("2024-01-28 不在 2 月内")
	}

	lastCell := weeks[len(weeks)-1][6]
	if !lastCell.Date.Equal(date(2024, time.March, 2)) {
		t.Errorf("最后一个格子 = %s, want 2024-03-02", lastCell.Date.Format("2006-01-02"))
	}

	// 每一行必须从周日开始、周六结束
	for i, week := range weeks {
		if week[0].Date.Weekday() != time.Sunday {
			t.Errorf("第 %d 行没有从周日开始", i)
		}
		if week[6].Date.Weekday() != time.Saturday {
			t.Errorf("第 %d 行没有在周六结束", i)
		}
	}

	// 2024-02-29 应该在网格内并标记为本月
	found := false
	for _, week := range weeks {
		for _, cell := range week {
			if cell.Date.Equal(date(2024, time.February, 29)) {
				found = true
				if !cell.InMonth {
					t.Error("2024-02-29 应该标记为本月")
				}
			}
		}
	}
	if !found {
		t.Error("网格中找不到 2024-02-29")
	}
}

func TestGridPopulatesOutOfMonthCells(t *testing.T) {
	// 课程落在网格首行、但属于上一个月的格子里，同样要填充上课记录
	s := &domain.Session{
		ID:     5,
		Title:  "磨豆机保养",
		Anchor: time.Date(2024, time.January, 29, 11, 0, 0, 0, time.UTC),
	}

	weeks := BuildMonthGrid(2024, time.February, []*domain.Session{s}, time.UTC)

	cell := weeks[0][1] // 2024-01-29（周一）
	if cell.InMonth {
		t.Fatal("2024-01-29 不应该标记为本月")
	}
	if len(cell.Occurrences) != 1 {
		t.Fatalf("月外格子应该照常填充上课记录, got %d", len(cell.Occurrences))
	}
}

func TestCellOrderingByTime(t *testing.T) {
	a := &domain.Session{ID: 10, Title: "后场实操", Anchor: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)}
	b := &domain.Session{ID: 11, Title: "吧台流程", Anchor: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)}

	// 快照顺序是 10:00 在前，排序后 09:00 必须排在 10:00 前面
	occs := occurrencesOn(date(2024, time.March, 4), []*domain.Session{a, b})
	if len(occs) != 2 {
		t.Fatalf("len(occs) = %d, want 2", len(occs))
	}
	if occs[0].Time != "09:00" || occs[1].Time != "10:00" {
		t.Errorf("排序结果 = [%s, %s], want [09:00, 10:00]", occs[0].Time, occs[1].Time)
	}
}

func TestCellOrderingTieBreak(t *testing.T) {
	// 时刻相同的两个课程按快照顺序稳定排列
	a := &domain.Session{ID: 20, Title: "先出现", Anchor: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)}
	b := &domain.Session{ID: 21, Title: "后出现", Anchor: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)}

	occs := occurrencesOn(date(2024, time.March, 4), []*domain.Session{a, b})
	if len(occs) != 2 {
		t.Fatalf("len(occs) = %d, want 2", len(occs))
	}
	if occs[0].SessionID != 20 || occs[1].SessionID != 21 {
		t.Errorf("同时刻应保持快照顺序, got [%d, %d]", occs[0].SessionID, occs[1].SessionID)
	}
}

func TestListOccurrencesWeekOfLatteArt(t *testing.T) {
	// 端到端：周一 + 周五 重复的"Latte Art 101"，列出 2024-03-18 那一周
	s := &domain.Session{
		ID:          30,
		Title:       "Latte Art 101",
		Anchor:      time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
		MeetingLink: "https://meet.example.com/latte",
		IsRecurring: true,
		RepeatDays:  []string{"Monday", "Friday"},
	}

	occs := ListOccurrences(date(2024, time.March, 18), date(2024, time.March, 24), []*domain.Session{s})

	if len(occs) != 2 {
		t.Fatalf("len(occs) = %d, want 2", len(occs))
	}
	if !occs[0].Date.Equal(date(2024, time.March, 18)) || occs[0].Time != "10:00" {
		t.Errorf("第一条 = %s %s, want 2024-03-18 10:00", occs[0].Date.Format("2006-01-02"), occs[0].Time)
	}
	if !occs[1].Date.Equal(date(2024, time.March, 22)) || occs[1].Time != "10:00" {
		t.Errorf("第二条 = %s %s, want 2024-03-22 10:00", occs[1].Date.Format("2006-01-02"), occs[1].Time)
	}

	// 周二没有课
	if _, ok := OccursOn(s, date(2024, time.March, 19)); ok {
		t.Error("2024-03-19（周二）不应该上课")
	}
}

func TestParseWeekday(t *testing.T) {
	if day, ok := ParseWeekday("Monday"); !ok || day != time.Monday {
		t.Errorf("ParseWeekday(Monday) = %v, %v", day, ok)
	}
	if _, ok := ParseWeekday("星期一"); ok {
		t.Error("非英文周几名称不应该被接受")
	}
	if _, ok := ParseWeekday("monday"); ok {
		t.Error("周几名称大小写敏感")
	}
}
