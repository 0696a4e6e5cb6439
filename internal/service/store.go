package service

import (
	"context"

	"walletsystem/internal/model"
)

// 服务层依赖的仓储抽象
//
// gorm 实现见 internal/repository，测试用内存实现见各 _test.go。
// 锁的抽象（lock.Executor）同理，Redis 实现和进程内实现可互换。

// WalletStore 钱包存取
type WalletStore interface {
	Create(ctx context.Context, wallet *model.Wallet) error
	// FindOwned 按所有者查询；钱包不存在和不属于该用户都返回 nil, nil
	FindOwned(ctx context.Context, walletID, ownerUserID int64) (*model.Wallet, error)
	// DecreaseIfEnough 原子条件扣减，返回扣减后余额；余额不足时不做修改，ok 为 false
	DecreaseIfEnough(ctx context.Context, walletID, amount int64) (balanceAfter int64, ok bool, err error)
	IncreaseBalance(ctx context.Context, walletID, amount int64) error
	// SaveBalance 无条件回写余额，仅供无锁对照实现使用
	SaveBalance(ctx context.Context, walletID, balance int64) error
}

// TransactionStore 交易结果快照存取
type TransactionStore interface {
	// Create 插入快照；幂等键冲突时返回 repository.ErrDuplicateTransaction
	Create(ctx context.Context, txn *model.Transaction) error
	// GetByTransactionID 按幂等键查询，不存在返回 nil, nil
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Transaction, error)
	// ListByWalletID 按钱包分页查询，新的在前
	ListByWalletID(ctx context.Context, walletID int64, page, pageSize int) ([]*model.Transaction, int64, error)
}

// OutboxStore 消息发件箱
type OutboxStore interface {
	Create(ctx context.Context, msg *model.OutboxMessage) error
}
