package xasync

import "sync"

// Queue 多生产者、单消费者的消息队列。
//
// 生产者只在追加时短暂持锁；消费者用 DrainAll 把整个待写切片换出，
// 写盘期间不持有队列锁。
type Queue struct {
	mu      sync.Mutex
	pending []string
}

// Enqueue 追加一条消息，不会失败。
func (q *Queue) Enqueue(msg string) {
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	q.mu.Unlock()
}

// DrainAll 取走当前全部待写消息，按入队顺序返回；队列为空时返回 nil。
func (q *Queue) DrainAll() []string {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()
	return batch
}

// Requeue 把未写入的一批消息放回队首，保持它们先于之后入队的消息。
func (q *Queue) Requeue(batch []string) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	merged := make([]string, 0, len(batch)+len(q.pending))
	merged = append(merged, batch...)
	q.pending = append(merged, q.pending...)
	q.mu.Unlock()
}

// Len 返回待写消息数
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
