package model

import (
	"time"
)

// 记录同步状态
// pending: 本地已写入，还未上传云端
// synced:  已与云端一致
// error:   连续上传失败超过上限，等待手动重试
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// Account 家长账户表
// 一个家庭一个账户，PIN 码保护家长专属操作
// ID 由客户端在创建时生成（UUID），同步过程中永不变更
type Account struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FullName  string    `gorm:"type:varchar(128);not null" json:"full_name"`
	Mobile    string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"mobile"`
	PinHash   string    `gorm:"type:varchar(128);not null" json:"pin_hash"` // bcrypt 哈希，永不存明文
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 以下字段只存在于设备本地，不写入云端
	SyncStatus string `gorm:"-" json:"sync_status,omitempty"`
	SyncRetry  int    `gorm:"-" json:"sync_retry,omitempty"` // 连续同步失败次数
}

func (Account) TableName() string {
	return "accounts"
}

// Touch 刷新更新时间（每次本地修改都要调用）
func (a *Account) Touch() {
	a.UpdatedAt = time.Now()
}
