package fanout

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

// mockStore 按接收者 ID 决定写入成败，并记录全部写入
type mockStore struct {
	mu      sync.Mutex
	created []*domain.Notification
	failFor map[int64]error
}

func (m *mockStore) CreateNotification(n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[n.RecipientID]; ok {
		return err
	}
	m.created = append(m.created, n)
	return nil
}

func TestFanoutAllSucceed(t *testing.T) {
	store := &mockStore{}
	f := New(store)

	report := f.Fanout([]int64{1, 2, 3}, Message{Title: "新课程", Type: domain.NotificationTypeNewSession})

	if len(report.Succeeded) != 3 || len(report.Failed) != 0 {
		t.Fatalf("report = %d 成功 %d 失败, want 3/0", len(report.Succeeded), len(report.Failed))
	}
	if len(store.created) != 3 {
		t.Fatalf("写入了 %d 条通知, want 3", len(store.created))
	}
	for _, n := range store.created {
		if n.Read {
			t.Error("新建通知必须是未读状态")
		}
		if n.Title != "新课程" {
			t.Errorf("Title = %q", n.Title)
		}
	}
}

func TestFanoutPartialFailure(t *testing.T) {
	wantErr := errors.New("写入失败")
	store := &mockStore{failFor: map[int64]error{2: wantErr}}
	f := New(store)

	report := f.Fanout([]int64{1, 2, 3}, Message{Title: "新课程"})

	succeeded := append([]int64{}, report.Succeeded...)
	slices.Sort(succeeded)
	if !slices.Equal(succeeded, []int64{1, 3}) {
		t.Errorf("Succeeded = %v, want [1 3]", succeeded)
	}
	if len(report.Failed) != 1 || !errors.Is(report.Failed[2], wantErr) {
		t.Errorf("Failed = %v, want {2: %v}", report.Failed, wantErr)
	}

	// 单个失败不影响其余写入
	if len(store.created) != 2 {
		t.Errorf("写入了 %d 条通知, want 2", len(store.created))
	}
}

func TestFanoutEmptyRecipients(t *testing.T) {
	store := &mockStore{}
	f := New(store)

	report := f.Fanout(nil, Message{Title: "新课程"})

	if len(report.Succeeded) != 0 || len(report.Failed) != 0 {
		t.Errorf("空接收者列表应该返回空报告")
	}
	if len(store.created) != 0 {
		t.Errorf("空接收者列表不应该有任何写入")
	}
}
