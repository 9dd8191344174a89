package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/recurrence"
	"github.com/kohi-academy/training-portal/backend/internal/scheduler"
)

// parseAnchor 解析客户端传来的上课时间，兼容带秒和不带秒两种写法。
func (h *Handler) parseAnchor(value string) (time.Time, error) {
	anchor, err := time.ParseInLocation("2006-01-02T15:04:05", value, h.location)
	if err == nil {
		return anchor, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", value, h.location)
}

func (h *Handler) parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, h.location)
}

// mySessions 按角色决定课程来源：学员看到分配给自己的讲师发布的课程，讲师和管理员看到自己发布的课程。
// 时区转换由 repository 在读出时完成，这里拿到的课程已经在门户时区里。
func (h *Handler) mySessions(myInfo *domain.User) ([]*domain.Session, error) {
	if myInfo.Role == domain.RoleStudent {
		return h.repository.GetSessionsForStudent(myInfo.ID)
	}
	return h.repository.GetSessionsByOwner(myInfo.ID)
}

// firstOccurrenceDate 计算课程的第一次上课日期，用于通知邮件。
// 重复课程的生效日期不一定落在 repeatDays 上，所以最多往后找一周。
func firstOccurrenceDate(s *domain.Session) time.Time {
	if !s.IsRecurring {
		return s.Anchor
	}

	date := s.Anchor
	for i := 0; i < 7; i++ {
		if _, ok := recurrence.OccursOn(s, date); ok {
			return date
		}
		date = date.AddDate(0, 0, 1)
	}
	return s.Anchor
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Title            string   `json:"title" validate:"required"`
		Anchor           string   `json:"anchor" validate:"required"`
		MeetingLink      string   `json:"meetingLink" validate:"required"`
		Description      string   `json:"description"`
		IsRecurring      bool     `json:"isRecurring"`
		RepeatDays       []string `json:"repeatDays"`
		RecurringEndDate string   `json:"recurringEndDate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	anchor, err := h.parseAnchor(req.Anchor)
	if err != nil {
		h.errorResponse(w, r, "上课时间格式无效")
		return
	}

	session := &domain.Session{
		OwnerID:     myInfo.ID,
		Title:       req.Title,
		Anchor:      anchor,
		MeetingLink: req.MeetingLink,
		Description: req.Description,
		IsRecurring: req.IsRecurring,
		RepeatDays:  req.RepeatDays,
	}

	if req.RecurringEndDate != "" {
		endDate, err := h.parseDate(req.RecurringEndDate)
		if err != nil {
			h.errorResponse(w, r, "结束日期格式无效")
			return
		}
		session.RecurringEndDate = &endDate
	}

	// 通知对象为分配给该讲师的所有学员
	students, err := h.repository.GetAssignedStudents(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	recipientIDs := make([]int64, 0, len(students))
	for _, student := range students {
		recipientIDs = append(recipientIDs, student.ID)
	}

	if err := h.scheduler.CreateSession(session, recipientIDs); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Message)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 站内通知之外再给学员发一封邮件，邮件发送失败不影响课程创建
	firstDate := firstOccurrenceDate(session)
	for _, student := range students {
		mailMessage := domain.MailMessage{
			Type: "new_session",
			To:   student.Email,
			Data: domain.NewSessionMailData{
				FullName:       student.FullName,
				InstructorName: myInfo.FullName,
				Title:          session.Title,
				FirstDate:      firstDate.Format("2006-01-02"),
				Time:           session.Anchor.Format("15:04"),
				IsRecurring:    session.IsRecurring,
				MeetingLink:    session.MeetingLink,
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Warn("课程通知邮件序列化失败", "email", student.Email, "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		if err := h.mailChannel.PublishWithContext(
			ctx,
			"",
			"email_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		); err != nil {
			slog.Warn("课程通知邮件发送失败", "email", student.Email, "error", err)
		}
		cancel()
	}

	h.successResponse(w, r, "课程创建成功", session)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*domain.Session)
	h.successResponse(w, r, "获取课程成功", session)
}

func (h *Handler) GetMySessions(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	sessions, err := h.mySessions(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取课程列表成功", sessions)
}

func (h *Handler) GetSessionCalendar(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		h.errorResponse(w, r, "年份无效")
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		h.errorResponse(w, r, "月份无效")
		return
	}

	sessions, err := h.mySessions(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	weeks := recurrence.BuildMonthGrid(year, time.Month(month), sessions, h.location)

	h.successResponse(w, r, "获取课程日历成功", weeks)
}

func (h *Handler) GetSessionOccurrences(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	start, err := h.parseDate(r.URL.Query().Get("start"))
	if err != nil {
		h.errorResponse(w, r, "开始日期格式无效")
		return
	}

	end, err := h.parseDate(r.URL.Query().Get("end"))
	if err != nil {
		h.errorResponse(w, r, "结束日期格式无效")
		return
	}

	if end.Before(start) {
		h.errorResponse(w, r, "结束日期不能早于开始日期")
		return
	}

	sessions, err := h.mySessions(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	occurrences := recurrence.ListOccurrences(start, end, sessions)

	h.successResponse(w, r, "获取上课安排成功", occurrences)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*domain.Session)

	var req struct {
		Title            *string  `json:"title"`
		Anchor           *string  `json:"anchor"`
		MeetingLink      *string  `json:"meetingLink"`
		Description      *string  `json:"description"`
		IsRecurring      *bool    `json:"isRecurring"`
		RepeatDays       []string `json:"repeatDays"`
		RecurringEndDate *string  `json:"recurringEndDate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	patch := &scheduler.SessionPatch{
		Title:       req.Title,
		MeetingLink: req.MeetingLink,
		Description: req.Description,
		IsRecurring: req.IsRecurring,
		RepeatDays:  req.RepeatDays,
	}

	if req.Anchor != nil {
		anchor, err := h.parseAnchor(*req.Anchor)
		if err != nil {
			h.errorResponse(w, r, "上课时间格式无效")
			return
		}
		patch.Anchor = &anchor
	}

	if req.RecurringEndDate != nil {
		if *req.RecurringEndDate == "" {
			// 空字符串表示清除结束日期
			patch.ClearRecurringEndDate = true
		} else {
			endDate, err := h.parseDate(*req.RecurringEndDate)
			if err != nil {
				h.errorResponse(w, r, "结束日期格式无效")
				return
			}
			patch.RecurringEndDate = &endDate
		}
	}

	updated, err := h.scheduler.UpdateSession(session.ID, patch)
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Message)
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "课程不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新课程成功", updated)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*domain.Session)

	if err := h.scheduler.DeleteSession(session.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除课程成功", nil)
}
