package service

import (
	"context"
	"fmt"

	"walletsystem/internal/model"
	"walletsystem/pkg/errcode"
)

// WalletService 钱包的创建、查询与入账
// 入账走无条件加法，不存在"余额不足"分支，不需要锁
type WalletService struct {
	wallets WalletStore
}

func NewWalletService(wallets WalletStore) *WalletService {
	return &WalletService{wallets: wallets}
}

// CreateWallet 创建钱包，允许带初始余额
func (s *WalletService) CreateWallet(ctx context.Context, ownerUserID, initialBalance int64) (*model.Wallet, error) {
	if initialBalance < 0 {
		return nil, errcode.New(errcode.InvalidRequest)
	}

	wallet := &model.Wallet{
		OwnerUserID: ownerUserID,
		Balance:     initialBalance,
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("创建钱包失败: %w", err)
	}
	return wallet, nil
}

// GetWallet 查询自己的钱包
func (s *WalletService) GetWallet(ctx context.Context, walletID, ownerUserID int64) (*model.Wallet, error) {
	wallet, err := s.wallets.FindOwned(ctx, walletID, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("查询钱包失败: %w", err)
	}
	if wallet == nil {
		return nil, errcode.New(errcode.Unauthorized)
	}
	return wallet, nil
}

// Deposit 入账，返回入账后的钱包
func (s *WalletService) Deposit(ctx context.Context, walletID, ownerUserID, amount int64) (*model.Wallet, error) {
	if amount <= 0 {
		return nil, errcode.New(errcode.InvalidRequest)
	}

	wallet, err := s.wallets.FindOwned(ctx, walletID, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("查询钱包失败: %w", err)
	}
	if wallet == nil {
		return nil, errcode.New(errcode.Unauthorized)
	}

	if err := s.wallets.IncreaseBalance(ctx, walletID, amount); err != nil {
		return nil, fmt.Errorf("入账失败: %w", err)
	}

	return s.GetWallet(ctx, walletID, ownerUserID)
}
