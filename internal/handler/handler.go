package handler

import (
	"errors"
	"log"
	"strconv"

	"walletsystem/internal/config"
	"walletsystem/internal/infrastructure/lock"
	"walletsystem/internal/repository"
	"walletsystem/internal/service"
	"walletsystem/pkg/errcode"
	"walletsystem/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	walletService      *service.WalletService
	withdrawService    *service.WithdrawService
	transactionService *service.TransactionService
}

// NewHandler 创建处理器实例
//
// 提现锁策略在这里选定：withdraw_lock_enabled 为 true 时使用
// Redis 分布式锁（多实例部署必须如此），为 false 时走无锁对照实现
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	walletRepo := repository.NewWalletRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	var locker lock.Executor
	if cfg.Business.WithdrawLockEnabled {
		locker = lock.NewRedisExecutor(rdb, cfg.Business.LockWait(), cfg.Business.LockLease())
	}

	return &Handler{
		walletService:      service.NewWalletService(walletRepo),
		withdrawService:    service.NewWithdrawService(walletRepo, transactionRepo, outboxRepo, locker, cfg),
		transactionService: service.NewTransactionService(walletRepo, transactionRepo),
	}
}

func walletIDParam(c *gin.Context) (int64, bool) {
	walletID, err := strconv.ParseInt(c.Param("wallet_id"), 10, 64)
	if err != nil || walletID <= 0 {
		response.ParamError(c, "wallet_id 参数错误")
		return 0, false
	}
	return walletID, true
}

// writeError 业务错误按错误码映射状态码输出，其余记日志并按内部错误处理
func writeError(c *gin.Context, err error) {
	var bizErr *errcode.BusinessError
	if !errors.As(err, &bizErr) {
		log.Printf("[Handler] 内部错误: %v", err)
	}
	response.BizError(c, err)
}

// ============================================================
// 钱包相关接口
// ============================================================

// CreateWalletRequest 创建钱包请求
type CreateWalletRequest struct {
	InitialBalance int64 `json:"initial_balance" binding:"gte=0"`
}

// CreateWallet 创建钱包
// POST /api/v1/wallets
func (h *Handler) CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	wallet, err := h.walletService.CreateWallet(c.Request.Context(), authUserID(c), req.InitialBalance)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, wallet)
}

// GetWallet 查询钱包
// GET /api/v1/wallets/:wallet_id
func (h *Handler) GetWallet(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), walletID, authUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, wallet)
}

// DepositRequest 入账请求
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// Deposit 入账
// POST /api/v1/wallets/:wallet_id/deposit
func (h *Handler) Deposit(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	wallet, err := h.walletService.Deposit(c.Request.Context(), walletID, authUserID(c), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, wallet)
}

// ============================================================
// 提现接口
// ============================================================

// WithdrawRequest 提现请求
type WithdrawRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,max=64"` // 幂等键，客户端生成
	Amount        int64  `json:"amount" binding:"required,gt=0"`           // 提现金额（最小货币单位）
}

// Withdraw 提现
// POST /api/v1/wallets/:wallet_id/withdraw
//
// 【关键点】提现是整个系统最核心的操作，需要保证：
// 1. 幂等性：相同的 transaction_id 至多生效一次，重试重放原始结果
// 2. 余额安全：任何并发形态下余额都不会为负
// 3. 并发安全：按钱包加分布式锁，同一钱包的提现串行执行
func (h *Handler) Withdraw(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.withdrawService.Withdraw(c.Request.Context(), &service.WithdrawRequest{
		WalletID:      walletID,
		OwnerUserID:   authUserID(c),
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// ============================================================
// 交易查询接口
// ============================================================

// ListTransactions 查询钱包交易记录（新的在前）
// GET /api/v1/wallets/:wallet_id/transactions?page=1&page_size=20
func (h *Handler) ListTransactions(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	transactions, total, err := h.transactionService.ListTransactions(
		c.Request.Context(), walletID, authUserID(c), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      transactions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
