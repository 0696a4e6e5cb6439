package service

import (
	"context"
	"fmt"

	"walletsystem/internal/model"
	"walletsystem/pkg/errcode"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TransactionService 交易快照的只读查询
type TransactionService struct {
	wallets      WalletStore
	transactions TransactionStore
}

func NewTransactionService(wallets WalletStore, transactions TransactionStore) *TransactionService {
	return &TransactionService{
		wallets:      wallets,
		transactions: transactions,
	}
}

// ListTransactions 查询钱包的交易快照，新的在前
// 先做所有者校验：钱包不存在和不属于当前用户返回同样的 UNAUTHORIZED
func (s *TransactionService) ListTransactions(ctx context.Context, walletID, ownerUserID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	wallet, err := s.wallets.FindOwned(ctx, walletID, ownerUserID)
	if err != nil {
		return nil, 0, fmt.Errorf("查询钱包失败: %w", err)
	}
	if wallet == nil {
		return nil, 0, errcode.New(errcode.Unauthorized)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return s.transactions.ListByWalletID(ctx, walletID, page, pageSize)
}
