// Package fanout 负责把一条站内通知广播给一批参与者。
//
// 广播是尽力而为的：每个接收者各写一条通知，写入之间互不影响，单个失败
// 不会取消或回滚其余写入，也不提供幂等保证——调用方整体重试可能产生重复
// 通知，这是约定好的语义而不是缺陷。
package fanout

import (
	"sync"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

type NotificationStore interface {
	CreateNotification(n *domain.Notification) error
}

type Message struct {
	Title       string
	Description string
	Type        string
}

// Report 汇总一次广播中每个接收者的结果。
type Report struct {
	Succeeded []int64
	Failed    map[int64]error
}

type Fanout struct {
	store NotificationStore
}

func New(store NotificationStore) *Fanout {
	return &Fanout{store: store}
}

// Fanout 并发地为每个接收者写入一条通知，等全部写入结束后返回汇总报告。
// 不会因为第一个失败而短路；报告中 Succeeded 和 Failed 恰好覆盖全部接收者。
func (f *Fanout) Fanout(recipientIDs []int64, msg Message) *Report {
	report := &Report{
		Succeeded: make([]int64, 0, len(recipientIDs)),
		Failed:    make(map[int64]error),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, recipientID := range recipientIDs {
		wg.Add(1)
		go func(recipientID int64) {
			defer wg.Done()

			n := &domain.Notification{
				RecipientID: recipientID,
				Title:       msg.Title,
				Description: msg.Description,
				Type:        msg.Type,
				Read:        false,
			}

			err := f.store.CreateNotification(n)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[recipientID] = err
				return
			}
			report.Succeeded = append(report.Succeeded, recipientID)
		}(recipientID)
	}

	wg.Wait()
	return report
}
