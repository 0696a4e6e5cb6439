package job

import (
	"context"
	"log"
	"time"

	"walletsystem/internal/repository"

	"gorm.io/gorm"
)

// BalanceAuditJob 余额一致性巡检任务
//
// 正常配置（条件扣减 + 分布式锁）下余额不可能为负，
// 这里扫到的任何一条负余额都意味着有请求绕过了条件扣减——
// 典型场景就是无锁对照配置跑出来的丢失更新。巡检只报警不修数，
// 异常数据留给人工核对流水后处理。
type BalanceAuditJob struct {
	db         *gorm.DB
	walletRepo *repository.WalletRepository
	stopCh     chan struct{}
	interval   time.Duration
	batchSize  int
}

func NewBalanceAuditJob(db *gorm.DB) *BalanceAuditJob {
	return &BalanceAuditJob{
		db:         db,
		walletRepo: repository.NewWalletRepository(db),
		stopCh:     make(chan struct{}),
		interval:   30 * time.Second,
		batchSize:  100,
	}
}

func (j *BalanceAuditJob) Start(ctx context.Context) {
	log.Println("[BalanceAuditJob] 余额巡检任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[BalanceAuditJob] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[BalanceAuditJob] 任务停止")
			return
		case <-ticker.C:
			j.auditNegativeBalances(ctx)
		}
	}
}

func (j *BalanceAuditJob) Stop() {
	close(j.stopCh)
}

func (j *BalanceAuditJob) auditNegativeBalances(ctx context.Context) {
	wallets, err := j.walletRepo.ListNegativeBalance(ctx, j.batchSize)
	if err != nil {
		log.Printf("[BalanceAuditJob] 扫描负余额钱包失败: %v", err)
		return
	}

	if len(wallets) == 0 {
		return
	}

	log.Printf("[BalanceAuditJob] 【一致性告警】发现 %d 个负余额钱包", len(wallets))
	for _, wallet := range wallets {
		log.Printf("[BalanceAuditJob] 负余额钱包: walletID=%d, ownerUserID=%d, balance=%d",
			wallet.ID, wallet.OwnerUserID, wallet.Balance)
	}
}
