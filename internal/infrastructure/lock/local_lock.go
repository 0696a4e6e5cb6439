package lock

import (
	"context"
	"sync"
	"time"
)

// LocalExecutor 进程内的临界区执行器
//
// 与 RedisExecutor 遵守同一份契约：按 key 互斥、等锁上限 wait、
// 租约上限 lease（持有者超时后锁自动可被他人获取）。
// 适用于单进程部署和测试场景，多实例部署必须换成 RedisExecutor。
type LocalExecutor struct {
	mu    sync.Mutex
	locks map[string]*localLock
	wait  time.Duration
	lease time.Duration
}

func NewLocalExecutor(wait, lease time.Duration) *LocalExecutor {
	return &LocalExecutor{
		locks: make(map[string]*localLock),
		wait:  wait,
		lease: lease,
	}
}

// localLock 单个 key 的锁
//
// sem 是容量 1 的信号量；gen 是持有代数，租约到期的强制释放和
// 持有者的正常释放都带着自己那一代的编号，只有编号仍然匹配才真正
// 释放，保证两条释放路径不会把下一任持有者的锁放掉
type localLock struct {
	sem chan struct{}
	mu  sync.Mutex
	gen uint64
}

func (e *LocalExecutor) lockFor(key string) *localLock {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[key]
	if !ok {
		l = &localLock{sem: make(chan struct{}, 1)}
		e.locks[key] = l
	}
	return l
}

// Execute 获取 key 对应的锁并执行 fn，任何出口都会释放锁
func (e *LocalExecutor) Execute(ctx context.Context, key string, fn func() error) error {
	l := e.lockFor(key)

	waitTimer := time.NewTimer(e.wait)
	defer waitTimer.Stop()

	select {
	case l.sem <- struct{}{}:
	case <-waitTimer.C:
		return ErrLockBusy
	case <-ctx.Done():
		return ctx.Err()
	}

	l.mu.Lock()
	l.gen++
	myGen := l.gen
	l.mu.Unlock()

	// 租约到期强制释放，模拟 Redis 锁的自动过期
	leaseTimer := time.AfterFunc(e.lease, func() {
		l.release(myGen)
	})
	defer func() {
		leaseTimer.Stop()
		l.release(myGen)
	}()

	return fn()
}

// release 仅当 gen 仍是自己那一代时才真正释放
func (l *localLock) release(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != gen {
		// 锁已被租约回收并易主，不能再动
		return
	}
	l.gen++
	<-l.sem
}
