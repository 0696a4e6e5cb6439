package lock

import (
	"context"
	"errors"
	"time"

	"walletsystem/pkg/idgen"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 按钱包互斥的分布式锁
// ============================================================================
//
// 【为什么需要分布式锁？】
//
// 场景：同一个钱包同时收到两笔提现请求（重试风暴、多端操作都会触发）
//
// 没有锁时，两个请求都会各自走一遍"查快照 -> 扣款 -> 写快照"，
// 条件扣减和唯一约束虽然兜住了底线，但请求会在数据库层面硬碰硬；
// 加锁后同一钱包的临界区完全串行，不同钱包互不影响。
//
// 【Redis 分布式锁原理】
//
// 加锁：SET key value NX EX lease
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 租约时间，持有者崩溃后锁自动过期，换取"永不卡死"
//   - value: 持有者令牌，释放时校验，防止误删别人的锁
//
// 释放锁：Lua 脚本保证"校验+删除"原子执行
//
// 【两个时间参数】均由构造参数显式传入，不读全局状态
//   - wait:  等锁上限，超过即快速失败返回 ErrLockBusy，向调用方暴露背压
//   - lease: 持锁上限，必须明显大于临界区耗时，否则会出现互斥空窗
//
// ============================================================================

var (
	// ErrLockBusy 等锁超时，调用方应退避后重试
	ErrLockBusy = errors.New("获取锁超时，资源繁忙")
)

// Executor 以作用域方式执行临界区：获取锁 -> 执行 -> 必定释放
//
// 进程内实现（LocalExecutor）和跨进程实现（RedisExecutor）可互换，
// 业务代码只依赖这个接口
type Executor interface {
	Execute(ctx context.Context, key string, fn func() error) error
}

// DistributedLock 一把具体的 Redis 锁
type DistributedLock struct {
	client *redis.Client
	key    string
	token  string        // 持有者令牌，释放时校验
	lease  time.Duration // 租约时间
}

func NewDistributedLock(client *redis.Client, key, token string, lease time.Duration) *DistributedLock {
	return &DistributedLock{
		client: client,
		key:    key,
		token:  token,
		lease:  lease,
	}
}

// TryLock 尝试获取锁（非阻塞）
//
// 【关键点】SetNX 只在 key 不存在时写入，保证同一时刻只有一个持有者
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.token, l.lease).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// LockWithWait 在等待上限内反复尝试获取锁
// 超过 wait 仍未获取到则返回 ErrLockBusy，不会无限排队
func (l *DistributedLock) LockWithWait(ctx context.Context, wait, retryInterval time.Duration) error {
	deadline := time.Now().Add(wait)

	for {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
}

// Unlock 释放锁
//
// 【关键点】Lua 脚本保证"校验令牌+删除"的原子性
//
//	场景：A 获取锁 -> A 执行超过租约，锁自动过期 -> B 获取锁 -> A 执行完调用 Unlock
//	不校验令牌的话，A 会把 B 正持有的锁删掉
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.token).Result()
	return err
}

// RedisExecutor 基于 Redis 锁的临界区执行器，跨进程、跨机器有效
type RedisExecutor struct {
	client        *redis.Client
	wait          time.Duration
	lease         time.Duration
	retryInterval time.Duration
}

func NewRedisExecutor(client *redis.Client, wait, lease time.Duration) *RedisExecutor {
	return &RedisExecutor{
		client:        client,
		wait:          wait,
		lease:         lease,
		retryInterval: 50 * time.Millisecond,
	}
}

// Execute 获取 key 对应的锁并执行 fn，任何出口都会释放锁
func (e *RedisExecutor) Execute(ctx context.Context, key string, fn func() error) error {
	l := NewDistributedLock(e.client, key, idgen.GenerateLockToken(), e.lease)

	if err := l.LockWithWait(ctx, e.wait, e.retryInterval); err != nil {
		return err
	}
	defer l.Unlock(context.Background())

	return fn()
}
