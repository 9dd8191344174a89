package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/fanout"
)

type mockStore struct {
	sessions map[int64]*domain.Session
	nextID   int64

	createCalls int
	updateCalls int
	deleteCalls int

	createErr error
	updateErr error
}

func newMockStore() *mockStore {
	return &mockStore{sessions: make(map[int64]*domain.Session), nextID: 1}
}

func (m *mockStore) CreateSession(s *domain.Session) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = m.nextID
	m.nextID++
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

func (m *mockStore) UpdateSession(s *domain.Session) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

func (m *mockStore) DeleteSession(id int64) error {
	m.deleteCalls++
	delete(m.sessions, id)
	return nil
}

func (m *mockStore) GetSessionByID(id int64) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("课程不存在")
	}
	clone := *s
	return &clone, nil
}

type mockSender struct {
	calls      int
	recipients []int64
	msg        fanout.Message
	report     *fanout.Report
}

func (m *mockSender) Fanout(recipientIDs []int64, msg fanout.Message) *fanout.Report {
	m.calls++
	m.recipients = recipientIDs
	m.msg = msg
	if m.report != nil {
		return m.report
	}
	return &fanout.Report{Succeeded: recipientIDs, Failed: map[int64]error{}}
}

func draftSession() *domain.Session {
	return &domain.Session{
		OwnerID:     7,
		Title:       "Latte Art 101",
		Anchor:      time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
		MeetingLink: "https://meet.example.com/latte",
	}
}

func TestCreateSessionValidationFailure(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	s := draftSession()
	s.MeetingLink = ""

	err := m.CreateSession(s, []int64{1, 2})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("错误类型应该是 *domain.ValidationError, got %T", err)
	}

	// 校验失败时既不触碰数据库也不广播
	if store.createCalls != 0 {
		t.Errorf("store.CreateSession 被调用了 %d 次, want 0", store.createCalls)
	}
	if sender.calls != 0 {
		t.Errorf("广播被调用了 %d 次, want 0", sender.calls)
	}
}

func TestCreateSessionSuccess(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	s := draftSession()
	if err := m.CreateSession(s, []int64{1, 2, 3}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if s.ID == 0 {
		t.Error("创建后应该拿到生成的 ID")
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("创建后应该盖上 createdAt/updatedAt")
	}
	if sender.calls != 1 {
		t.Fatalf("广播被调用了 %d 次, want 1", sender.calls)
	}
	if len(sender.recipients) != 3 {
		t.Errorf("广播接收者 = %v, want 3 人", sender.recipients)
	}
	if sender.msg.Type != domain.NotificationTypeNewSession {
		t.Errorf("一次性课程的通知类型 = %q", sender.msg.Type)
	}
}

func TestCreateRecurringSessionMessage(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	s := draftSession()
	s.IsRecurring = true
	s.RepeatDays = []string{"Monday", "Friday"}

	if err := m.CreateSession(s, []int64{1}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sender.msg.Type != domain.NotificationTypeNewRecurringSession {
		t.Errorf("重复课程的通知类型 = %q", sender.msg.Type)
	}
	if sender.msg.Title == "" || sender.msg.Title == "新的直播课程" {
		t.Errorf("重复课程应该有不同的通知措辞, got %q", sender.msg.Title)
	}
}

func TestCreateSessionFanoutFailureDoesNotFailCreate(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{
		report: &fanout.Report{
			Succeeded: []int64{1, 3},
			Failed:    map[int64]error{2: errors.New("写入失败")},
		},
	}
	m := NewManager(store, sender)

	s := draftSession()
	if err := m.CreateSession(s, []int64{1, 2, 3}); err != nil {
		t.Fatalf("广播部分失败不应该让创建失败: %v", err)
	}
	if store.createCalls != 1 {
		t.Errorf("store.CreateSession 被调用了 %d 次, want 1", store.createCalls)
	}
}

func TestCreateSessionStoreFailure(t *testing.T) {
	store := newMockStore()
	store.createErr = errors.New("数据库不可用")
	sender := &mockSender{}
	m := NewManager(store, sender)

	err := m.CreateSession(draftSession(), []int64{1})
	if !errors.Is(err, store.createErr) {
		t.Fatalf("应该原样返回存储错误, got %v", err)
	}
	if sender.calls != 0 {
		t.Error("落库失败后不应该广播")
	}
}

func TestCreateNonRecurringClearsRecurrenceFields(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	endDate := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	s := draftSession()
	s.RepeatDays = []string{"Monday"}
	s.RecurringEndDate = &endDate

	if err := m.CreateSession(s, nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.RepeatDays != nil || s.RecurringEndDate != nil {
		t.Error("非重复课程落库前应该清空重复相关字段")
	}
}

func TestUpdateSessionMergeAndNoFanout(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	s := draftSession()
	if err := m.CreateSession(s, nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	sender.calls = 0
	createdAt := s.CreatedAt

	newTitle := "Latte Art 201"
	recurring := true
	updated, err := m.UpdateSession(s.ID, &SessionPatch{
		Title:       &newTitle,
		IsRecurring: &recurring,
		RepeatDays:  []string{"Wednesday"},
	})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	if updated.Title != newTitle {
		t.Errorf("Title = %q", updated.Title)
	}
	if !updated.IsRecurring || len(updated.RepeatDays) != 1 {
		t.Error("补丁应该允许把课程改成重复课程")
	}
	if updated.MeetingLink != s.MeetingLink {
		t.Error("未出现在补丁中的字段应该保持不变")
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Error("更新不应该改动 createdAt")
	}
	if !updated.UpdatedAt.After(createdAt) && !updated.UpdatedAt.Equal(createdAt) {
		t.Error("更新应该盖上新的 updatedAt")
	}
	if sender.calls != 0 {
		t.Error("更新不应该触发广播")
	}
}

func TestUpdateSessionRevalidatesMergedResult(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	s := draftSession()
	if err := m.CreateSession(s, nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	updateCallsBefore := store.updateCalls

	// 改成重复课程但不给周几，合并结果不合法
	recurring := true
	_, err := m.UpdateSession(s.ID, &SessionPatch{IsRecurring: &recurring})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("错误类型应该是 *domain.ValidationError, got %T", err)
	}
	if store.updateCalls != updateCallsBefore {
		t.Error("校验失败时不应该落库")
	}
}

func TestUpdateSessionClearRecurringEndDate(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	endDate := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	s := draftSession()
	s.IsRecurring = true
	s.RepeatDays = []string{"Monday"}
	s.RecurringEndDate = &endDate
	if err := m.CreateSession(s, nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	updated, err := m.UpdateSession(s.ID, &SessionPatch{ClearRecurringEndDate: true})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if updated.RecurringEndDate != nil {
		t.Error("ClearRecurringEndDate 应该清空结束日期")
	}
}

func TestDeleteSession(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	m := NewManager(store, sender)

	s := draftSession()
	if err := m.CreateSession(s, nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	sender.calls = 0

	if err := m.DeleteSession(s.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if store.deleteCalls != 1 {
		t.Errorf("store.DeleteSession 被调用了 %d 次, want 1", store.deleteCalls)
	}
	if sender.calls != 0 {
		t.Error("删除不应该触发广播")
	}
}
