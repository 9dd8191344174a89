package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

func (h *Handler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	notifications, err := h.repository.GetNotificationsByRecipient(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取通知列表成功", notifications)
}

func (h *Handler) MarkMyNotificationRead(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	notificationIDParam := chi.URLParam(r, "id")
	notificationID, err := strconv.ParseInt(notificationIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "通知ID无效")
		return
	}

	// 按接收者过滤，防止标记别人的通知
	if err := h.repository.MarkNotificationRead(notificationID, myInfo.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "通知不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "通知已标记为已读", nil)
}
