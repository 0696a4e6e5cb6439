package repository

import (
	"context"
	"errors"

	"walletsystem/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateTransaction 幂等键已存在
	// 并发重复请求里只有一个 INSERT 成功，其余靠这个错误识别冲突后回读赢家快照
	ErrDuplicateTransaction = errors.New("交易记录已存在")
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create 插入交易结果快照
// transaction_id 唯一键冲突时返回 ErrDuplicateTransaction，且不产生任何部分写入
func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	err := r.db.WithContext(ctx).Create(txn).Error
	if err != nil {
		// 依赖 gorm.Config.TranslateError 将驱动的唯一键冲突翻译为统一错误
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListByWalletID 按钱包查询交易快照，新的在前
func (r *TransactionRepository) ListByWalletID(ctx context.Context, walletID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	var transactions []*model.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("wallet_id = ?", walletID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}
