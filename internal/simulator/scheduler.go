package simulator

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// CancelFunc 取消已调度的任务，可重复调用
type CancelFunc func()

// Scheduler 定时调度抽象，引擎通过它驱动 tick
type Scheduler interface {
	Now() time.Time
	Every(interval time.Duration, fn func()) CancelFunc
	After(delay time.Duration, fn func()) CancelFunc
}

// TickerScheduler 基于真实时钟的调度器
// 所有回调共享一把锁，同一调度器上的回调不会并发执行。
// CancelFunc 会等待正在执行的回调结束，因此不能在回调内部调用
type TickerScheduler struct {
	mu sync.Mutex
}

// NewTickerScheduler 创建真实时钟调度器
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Now 当前时间
func (s *TickerScheduler) Now() time.Time {
	return time.Now()
}

// Every 按固定间隔重复执行 fn
func (s *TickerScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	t := newTickerTask()
	ticker := time.NewTicker(interval)

	go func() {
		defer close(t.exited)
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				s.run(t, fn)
			}
		}
	}()

	return t.cancel
}

// After 延迟 delay 后执行一次 fn
func (s *TickerScheduler) After(delay time.Duration, fn func()) CancelFunc {
	t := newTickerTask()
	timer := time.NewTimer(delay)

	go func() {
		defer close(t.exited)
		select {
		case <-t.done:
			timer.Stop()
		case <-timer.C:
			s.run(t, fn)
		}
	}()

	return t.cancel
}

func (s *TickerScheduler) run(t *tickerTask, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.stopped.Load() {
		return
	}
	fn()
}

type tickerTask struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
	exited  chan struct{}
}

func newTickerTask() *tickerTask {
	return &tickerTask{
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (t *tickerTask) cancel() {
	t.stopped.Store(true)
	t.once.Do(func() { close(t.done) })
	<-t.exited
}

// ManualScheduler 虚拟时钟调度器，只在 Advance 时推进时间并执行到期任务
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	tasks  map[int]*manualTask
}

type manualTask struct {
	id       int
	due      time.Time
	interval time.Duration
	fn       func()
}

// NewManualScheduler 创建虚拟时钟调度器
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{
		now:   start,
		tasks: make(map[int]*manualTask),
	}
}

// Now 当前虚拟时间
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Every 注册周期任务，首次在 now+interval 执行
func (s *ManualScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	return s.add(interval, interval, fn)
}

// After 注册一次性任务
func (s *ManualScheduler) After(delay time.Duration, fn func()) CancelFunc {
	return s.add(delay, 0, fn)
}

// Pending 尚未执行或取消的任务数
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *ManualScheduler) add(delay, interval time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.tasks[id] = &manualTask{
		id:       id,
		due:      s.now.Add(delay),
		interval: interval,
		fn:       fn,
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.tasks, id)
	}
}

// Advance 推进虚拟时间 d，按到期时间依次执行任务，同一时刻按注册顺序执行
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		task := s.nextDue(target)
		if task == nil {
			break
		}
		task.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// nextDue 取出下一个到期任务并把时钟拨到它的到期时间
func (s *ManualScheduler) nextDue(target time.Time) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*manualTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.due.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})

	task := due[0]
	s.now = task.due
	if task.interval > 0 {
		task.due = task.due.Add(task.interval)
	} else {
		delete(s.tasks, task.id)
	}
	return task
}
