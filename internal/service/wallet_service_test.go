package service

import (
	"context"
	"testing"

	"walletsystem/pkg/errcode"
)

func TestWalletService_CreateAndGet(t *testing.T) {
	wallets := newMemWalletStore()
	svc := NewWalletService(wallets)

	created, err := svc.CreateWallet(context.Background(), 1, 5_000)
	if err != nil {
		t.Fatalf("创建钱包失败: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("钱包ID未分配")
	}

	got, err := svc.GetWallet(context.Background(), created.ID, 1)
	if err != nil {
		t.Fatalf("查询钱包失败: %v", err)
	}
	if got.Balance != 5_000 {
		t.Fatalf("期望余额 5000，实际 %d", got.Balance)
	}

	// 负的初始余额不允许
	_, err = svc.CreateWallet(context.Background(), 1, -1)
	assertBizCode(t, err, errcode.InvalidRequest)

	// 非所有者查询
	_, err = svc.GetWallet(context.Background(), created.ID, 999)
	assertBizCode(t, err, errcode.Unauthorized)
}

func TestWalletService_Deposit(t *testing.T) {
	wallets := newMemWalletStore()
	svc := NewWalletService(wallets)

	created, err := svc.CreateWallet(context.Background(), 1, 1_000)
	if err != nil {
		t.Fatalf("创建钱包失败: %v", err)
	}

	after, err := svc.Deposit(context.Background(), created.ID, 1, 2_500)
	if err != nil {
		t.Fatalf("入账失败: %v", err)
	}
	if after.Balance != 3_500 {
		t.Fatalf("期望余额 3500，实际 %d", after.Balance)
	}

	_, err = svc.Deposit(context.Background(), created.ID, 1, 0)
	assertBizCode(t, err, errcode.InvalidRequest)

	_, err = svc.Deposit(context.Background(), created.ID, 999, 100)
	assertBizCode(t, err, errcode.Unauthorized)
}
