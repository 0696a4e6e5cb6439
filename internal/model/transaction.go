package model

import (
	"time"

	"walletsystem/pkg/errcode"
)

// ============================================================================
// 交易结果快照
// ============================================================================

const (
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusFailed  = "FAILED"
)

// Transaction 交易结果快照表
// 每个幂等键（transaction_id）恰好对应一行，插入后不再修改
//
// 【重要】快照表设计原则：
// 1. 只追加，不修改，不删除 —— 重试时原样重放历史结果
// 2. transaction_id 全局唯一 —— 并发重复请求靠这条唯一约束分出唯一赢家，
//    输家撞唯一键冲突后回读赢家的快照，这是幂等性的最终兜底
// 3. 成功快照记录扣减后余额，失败快照记录失败原因码 —— 两种结局都能精确重放
type Transaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"` // 幂等键，客户端生成，全局唯一
	WalletID      int64     `gorm:"index;not null" json:"wallet_id"`                             // 关联钱包
	Amount        int64     `gorm:"not null" json:"amount"`                                      // 请求金额
	Status        string    `gorm:"type:varchar(16);not null" json:"status"`                     // SUCCESS / FAILED
	BalanceAfter  *int64    `gorm:"" json:"balance_after,omitempty"`                             // 扣减后余额，仅成功时有值
	FailureReason string    `gorm:"type:varchar(64)" json:"failure_reason,omitempty"`            // 失败原因码，仅失败时有值
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// NewSuccessTransaction 构造成功快照
func NewSuccessTransaction(transactionID string, walletID, amount, balanceAfter int64) *Transaction {
	return &Transaction{
		TransactionID: transactionID,
		WalletID:      walletID,
		Amount:        amount,
		Status:        TransactionStatusSuccess,
		BalanceAfter:  &balanceAfter,
	}
}

// NewFailedTransaction 构造失败快照，失败原因码取业务错误码
func NewFailedTransaction(transactionID string, walletID, amount int64, code errcode.Code) *Transaction {
	return &Transaction{
		TransactionID: transactionID,
		WalletID:      walletID,
		Amount:        amount,
		Status:        TransactionStatusFailed,
		FailureReason: string(code),
	}
}
