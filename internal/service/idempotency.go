package service

import (
	"walletsystem/internal/model"
	"walletsystem/pkg/errcode"
)

// replay 重放一份已落库的交易快照
//
// 成功快照 -> 返回与首次完全一致的结果（含当时的扣减后余额）
// 失败快照 -> 抛出快照里记录的那个业务错误
//
// 重试请求由此与原始请求在外部完全不可区分，余额不会被再次触碰。
// failure_reason 可能是新版本写入的未知错误码，按 INTERNAL_ERROR 兜底。
func (s *WithdrawService) replay(txn *model.Transaction) (*WithdrawResponse, error) {
	if txn.Status == model.TransactionStatusSuccess {
		var balanceAfter int64
		if txn.BalanceAfter != nil {
			balanceAfter = *txn.BalanceAfter
		}
		return &WithdrawResponse{
			TransactionID: txn.TransactionID,
			WalletID:      txn.WalletID,
			Amount:        txn.Amount,
			Status:        txn.Status,
			BalanceAfter:  balanceAfter,
		}, nil
	}

	return nil, errcode.New(errcode.FromStored(txn.FailureReason))
}
