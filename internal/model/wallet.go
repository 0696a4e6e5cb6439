package model

import (
	"time"
)

// Wallet 钱包表
// 余额以最小货币单位存储，是整个系统唯一的共享可变状态
//
// 【不变量】任何已提交状态下 balance >= 0
// 余额只能通过仓储层的条件扣减修改，业务代码不允许直接改写
type Wallet struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerUserID int64     `gorm:"index;not null" json:"owner_user_id"` // 钱包所有者，由外部认证体系下发
	Balance     int64     `gorm:"not null;default:0" json:"balance"`   // 余额（最小货币单位）
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
