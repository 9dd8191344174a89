package domain

import "time"

// Session 表示讲师发布的一次性或每周重复的直播课程。
// Anchor 同时承担两个角色：重复课程的最早生效日期，以及每一次上课的时刻。
type Session struct {
	ID               int64      `json:"id"`
	OwnerID          int64      `json:"ownerID"`
	Title            string     `json:"title"`
	Anchor           time.Time  `json:"anchor"`
	MeetingLink      string     `json:"meetingLink"`
	Description      string     `json:"description"`
	IsRecurring      bool       `json:"isRecurring"`
	RepeatDays       []string   `json:"repeatDays"`
	RecurringEndDate *time.Time `json:"recurringEndDate"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Occurrence 表示某个课程在某一天"上课"这一派生事实，只在查询时计算，从不落库。
type Occurrence struct {
	SessionID   int64     `json:"sessionID"`
	Title       string    `json:"title"`
	MeetingLink string    `json:"meetingLink"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
}
