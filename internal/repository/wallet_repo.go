package repository

import (
	"context"
	"errors"

	"walletsystem/internal/model"

	"gorm.io/gorm"
)

var (
	ErrWalletNotFound = errors.New("钱包不存在")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, wallet *model.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

// FindOwned 按所有者查询钱包
//
// 【关键点】钱包不存在和不属于该用户返回同样的 nil, nil，
// 调用方无法区分，避免向非所有者暴露钱包是否存在
func (r *WalletRepository) FindOwned(ctx context.Context, walletID, ownerUserID int64) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_user_id = ?", walletID, ownerUserID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// DecreaseIfEnough 条件扣减：余额充足才扣，返回扣减后余额
//
// 【关键点】检查和扣减必须是一条语句
//
//	UPDATE wallets SET balance = balance - ? WHERE id = ? AND balance >= ?
//
// 两个并发请求对余额 100 的钱包各扣 60，数据库行锁保证只有一个 UPDATE
// 的 WHERE 条件成立，另一个影响行数为 0。这条语句本身就是正确性原语，
// 分布式锁只是在它外面减少无效争抢。
//
// MySQL 的 UPDATE 不支持 RETURNING，所以在同一个事务里回读余额：
// UPDATE 持有的行锁到事务提交才释放，回读值即扣减后的精确余额。
func (r *WalletRepository) DecreaseIfEnough(ctx context.Context, walletID, amount int64) (int64, bool, error) {
	var balanceAfter int64
	decreased := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Wallet{}).
			Where("id = ? AND balance >= ?", walletID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 余额不足（或钱包不存在），未做任何修改
			return nil
		}

		decreased = true
		var wallet model.Wallet
		if err := tx.Where("id = ?", walletID).First(&wallet).Error; err != nil {
			return err
		}
		balanceAfter = wallet.Balance
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return balanceAfter, decreased, nil
}

// IncreaseBalance 入账（充值）
func (r *WalletRepository) IncreaseBalance(ctx context.Context, walletID, amount int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// SaveBalance 直接回写余额，不做任何条件检查
//
// 【警告】仅供无锁对照实现使用。读出的余额可能已经过期，
// 盲写会覆盖并发事务的扣减结果（丢失更新），这正是对照实验要展示的问题
func (r *WalletRepository) SaveBalance(ctx context.Context, walletID, balance int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// ListNegativeBalance 扫描余额为负的钱包，供一致性巡检任务使用
func (r *WalletRepository) ListNegativeBalance(ctx context.Context, limit int) ([]*model.Wallet, error) {
	var wallets []*model.Wallet
	err := r.db.WithContext(ctx).
		Where("balance < 0").
		Limit(limit).
		Find(&wallets).Error
	return wallets, err
}
