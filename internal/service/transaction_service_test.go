package service

import (
	"context"
	"fmt"
	"testing"

	"walletsystem/pkg/errcode"
)

func TestListTransactions_Unauthorized(t *testing.T) {
	wallets := newMemWalletStore()
	transactions := newMemTransactionStore()
	svc := NewTransactionService(wallets, transactions)

	env := &testEnv{wallets: wallets}
	walletID := env.createWallet(t, 1, 10_000)

	// 非所有者
	_, _, errOther := svc.ListTransactions(context.Background(), walletID, 999, 1, 20)
	assertBizCode(t, errOther, errcode.Unauthorized)

	// 不存在的钱包，错误与上面完全一致
	_, _, errMissing := svc.ListTransactions(context.Background(), walletID+100, 999, 1, 20)
	assertBizCode(t, errMissing, errcode.Unauthorized)
	if errOther.Error() != errMissing.Error() {
		t.Fatalf("越权和不存在的错误应不可区分: %q vs %q", errOther.Error(), errMissing.Error())
	}
}

func TestListTransactions_NewestFirstAndPaging(t *testing.T) {
	env := newLockedTestEnv()
	walletID := env.createWallet(t, 1, 1_000_000)
	svc := NewTransactionService(env.wallets, env.transactions)

	// 依次产生 5 笔提现，写入顺序即时间顺序
	for i := 0; i < 5; i++ {
		_, err := env.service.Withdraw(context.Background(), &WithdrawRequest{
			WalletID:      walletID,
			OwnerUserID:   1,
			TransactionID: fmt.Sprintf("tx-list-%d", i),
			Amount:        1_000,
		})
		if err != nil {
			t.Fatalf("预置提现失败: %v", err)
		}
	}

	list, total, err := svc.ListTransactions(context.Background(), walletID, 1, 1, 3)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 5 {
		t.Fatalf("期望总数 5，实际 %d", total)
	}
	if len(list) != 3 {
		t.Fatalf("期望第一页 3 条，实际 %d", len(list))
	}
	// 新的在前
	if list[0].TransactionID != "tx-list-4" || list[2].TransactionID != "tx-list-2" {
		t.Fatalf("排序错误: %s ... %s", list[0].TransactionID, list[2].TransactionID)
	}

	page2, _, err := svc.ListTransactions(context.Background(), walletID, 1, 2, 3)
	if err != nil {
		t.Fatalf("查询第二页失败: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("期望第二页 2 条，实际 %d", len(page2))
	}
	if page2[0].TransactionID != "tx-list-1" || page2[1].TransactionID != "tx-list-0" {
		t.Fatalf("第二页排序错误: %s, %s", page2[0].TransactionID, page2[1].TransactionID)
	}
}

func TestListTransactions_PageNormalization(t *testing.T) {
	env := newLockedTestEnv()
	walletID := env.createWallet(t, 1, 10_000)
	svc := NewTransactionService(env.wallets, env.transactions)

	// page / pageSize 非法时回落到默认值，不报错
	if _, _, err := svc.ListTransactions(context.Background(), walletID, 1, 0, 0); err != nil {
		t.Fatalf("非法分页参数应被归一化: %v", err)
	}
	if _, _, err := svc.ListTransactions(context.Background(), walletID, 1, -1, 10_000); err != nil {
		t.Fatalf("超大 pageSize 应被截断: %v", err)
	}
}
