package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"walletsystem/internal/config"
	"walletsystem/internal/infrastructure/lock"
	"walletsystem/internal/model"
	"walletsystem/internal/repository"
	"walletsystem/pkg/errcode"
)

// ============================================================================
// 提现服务
// ============================================================================
//
// 【三条保证】
// 1. 余额永不为负 —— 条件扣减（UPDATE ... WHERE balance >= ?）是一条
//    原子语句，检查和扣减不可分割
// 2. 同一幂等键至多生效一次 —— transactions.transaction_id 的全局唯一约束
//    是最终兜底：并发重复请求只有一个 INSERT 成功，输家回读赢家的快照
// 3. 重试重放原始结果 —— 成功和业务失败都落快照，重试时原样重放，
//    客户端不需要自己做去重
//
// 【分工】分布式锁负责把同一钱包的临界区串行化，减少无效争抢、
// 收敛尾延迟；它是公平性/性能机制，不是正确性的最终兜底。
// 正确性兜底是条件扣减 + 唯一约束这两条数据库层的原语。
//
// 【对照实现】构造时不传锁（NewWithdrawService 的 locker 为 nil，
// 对应配置 business.withdraw_lock_enabled: false）则走无锁路径：
// 读余额 -> 判断 -> 盲写回。并发下必然出现丢失更新和超扣，
// 这是有意保留的对照实验，用来演示锁拆掉之后会发生什么，不要"修复"它。
//
// ============================================================================

const walletLockKeyPrefix = "wallet:withdraw:lock:"

func walletLockKey(walletID int64) string {
	return fmt.Sprintf("%s%d", walletLockKeyPrefix, walletID)
}

type WithdrawService struct {
	wallets      WalletStore
	transactions TransactionStore
	outbox       OutboxStore
	locker       lock.Executor // nil 表示无锁对照模式
	cfg          *config.Config
}

// NewWithdrawService 创建提现服务
// locker 传 nil 时启用无锁对照实现，仅用于并发实验
func NewWithdrawService(
	wallets WalletStore,
	transactions TransactionStore,
	outbox OutboxStore,
	locker lock.Executor,
	cfg *config.Config,
) *WithdrawService {
	return &WithdrawService{
		wallets:      wallets,
		transactions: transactions,
		outbox:       outbox,
		locker:       locker,
		cfg:          cfg,
	}
}

type WithdrawRequest struct {
	WalletID      int64
	OwnerUserID   int64  // 来自认证层，已验证
	TransactionID string // 幂等键，客户端生成，全局唯一
	Amount        int64
}

type WithdrawResponse struct {
	TransactionID string `json:"transaction_id"`
	WalletID      int64  `json:"wallet_id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	BalanceAfter  int64  `json:"balance_after"`
}

// Withdraw 执行提现
func (s *WithdrawService) Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error) {
	if req.Amount <= 0 {
		return nil, errcode.New(errcode.InvalidRequest)
	}

	// 快路径幂等检查（锁外）：重试请求直接重放历史结果，完全不碰锁
	existing, err := s.transactions.GetByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("查询交易快照失败: %w", err)
	}
	if existing != nil {
		return s.replay(existing)
	}

	if s.locker == nil {
		return s.withdrawWithoutLock(ctx, req)
	}

	var resp *WithdrawResponse
	err = s.locker.Execute(ctx, walletLockKey(req.WalletID), func() error {
		r, execErr := s.doWithdraw(ctx, req)
		resp = r
		return execErr
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockBusy) {
			return nil, errcode.New(errcode.WalletBusy)
		}
		return nil, err
	}
	return resp, nil
}

// doWithdraw 锁内的提现临界区
func (s *WithdrawService) doWithdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error) {
	// 锁内二次幂等检查：防住"等锁期间另一个重复请求已经完成"的窗口
	existing, err := s.transactions.GetByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("查询交易快照失败: %w", err)
	}
	if existing != nil {
		return s.replay(existing)
	}

	// 所有者校验
	wallet, err := s.wallets.FindOwned(ctx, req.WalletID, req.OwnerUserID)
	if err != nil {
		return nil, fmt.Errorf("查询钱包失败: %w", err)
	}
	if wallet == nil {
		return nil, errcode.New(errcode.Unauthorized)
	}

	// 条件扣减：余额充足才扣，返回扣减后余额
	balanceAfter, ok, err := s.wallets.DecreaseIfEnough(ctx, req.WalletID, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("扣减余额失败: %w", err)
	}
	if !ok {
		// 余额不足也要落失败快照，重试时重放同样的失败
		return s.persistSnapshotOrReplay(ctx,
			model.NewFailedTransaction(req.TransactionID, req.WalletID, req.Amount, errcode.InsufficientBalance))
	}

	return s.persistSnapshotOrReplay(ctx,
		model.NewSuccessTransaction(req.TransactionID, req.WalletID, req.Amount, balanceAfter))
}

// withdrawWithoutLock 无锁对照实现
//
// 读出的余额是个瞬时快照，判断之后回写之前，别的请求可能已经提交了
// 自己的扣减；盲写会把那次扣减覆盖掉（丢失更新），于是总扣减额可以
// 超过初始余额，余额也可能为负。这正是对照实验要观测的结果。
func (s *WithdrawService) withdrawWithoutLock(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error) {
	// 与加锁版保持同构的二次幂等检查
	existing, err := s.transactions.GetByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("查询交易快照失败: %w", err)
	}
	if existing != nil {
		return s.replay(existing)
	}

	wallet, err := s.wallets.FindOwned(ctx, req.WalletID, req.OwnerUserID)
	if err != nil {
		return nil, fmt.Errorf("查询钱包失败: %w", err)
	}
	if wallet == nil {
		return nil, errcode.New(errcode.Unauthorized)
	}

	if wallet.Balance < req.Amount {
		return s.persistSnapshotOrReplay(ctx,
			model.NewFailedTransaction(req.TransactionID, req.WalletID, req.Amount, errcode.InsufficientBalance))
	}

	// 模拟真实业务的处理耗时，放大"判断-回写"之间的竞态窗口
	time.Sleep(time.Millisecond)

	balanceAfter := wallet.Balance - req.Amount
	if err := s.wallets.SaveBalance(ctx, req.WalletID, balanceAfter); err != nil {
		return nil, fmt.Errorf("回写余额失败: %w", err)
	}

	return s.persistSnapshotOrReplay(ctx,
		model.NewSuccessTransaction(req.TransactionID, req.WalletID, req.Amount, balanceAfter))
}

// persistSnapshotOrReplay 落快照；撞幂等键冲突则回读赢家快照并重放
//
// 【关键点】唯一键冲突不是故障，而是并发重复请求的正常形态：
// 说明这把键已经有了结果，本次请求的视角要向赢家的结果对齐。
// 快照插入成功后重放自己刚写的快照，成功即返回结果，
// 失败快照即抛出对应业务错误，两条路径代码完全一致。
func (s *WithdrawService) persistSnapshotOrReplay(ctx context.Context, snapshot *model.Transaction) (*WithdrawResponse, error) {
	err := s.transactions.Create(ctx, snapshot)
	if err == nil {
		if snapshot.Status == model.TransactionStatusSuccess {
			s.enqueueResultEvent(ctx, snapshot)
		}
		return s.replay(snapshot)
	}

	if errors.Is(err, repository.ErrDuplicateTransaction) {
		existing, findErr := s.transactions.GetByTransactionID(ctx, snapshot.TransactionID)
		if findErr != nil {
			return nil, fmt.Errorf("回读交易快照失败: %w", findErr)
		}
		if existing == nil {
			// 唯一键冲突却查不到记录，状态已经不可解释
			return nil, errcode.New(errcode.InternalError)
		}
		return s.replay(existing)
	}

	return nil, fmt.Errorf("保存交易快照失败: %w", err)
}

// enqueueResultEvent 写入提现结果事件到发件箱，由后台任务异步投递
// 尽力而为：事件失败不能影响已经提交的提现结果
func (s *WithdrawService) enqueueResultEvent(ctx context.Context, txn *model.Transaction) {
	payload := map[string]interface{}{
		"transaction_id": txn.TransactionID,
		"wallet_id":      txn.WalletID,
		"amount":         txn.Amount,
		"status":         txn.Status,
		"balance_after":  txn.BalanceAfter,
		"occurred_at":    time.Now().Format(time.RFC3339),
	}
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: txn.TransactionID,
		Topic:      s.cfg.Kafka.Topic.WithdrawResult,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, msg); err != nil {
		log.Printf("写入提现结果事件失败: transactionID=%s, err=%v", txn.TransactionID, err)
	}
}
