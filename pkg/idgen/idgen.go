package idgen

import (
	"github.com/google/uuid"
)

// ============================================================================
// 记录 ID 生成器
// ============================================================================
//
// 【为什么用 UUID 而不是自增/雪花 ID？】
//
// 记录在设备离线时创建，ID 必须满足：
//   1. 客户端离线可生成 - 不依赖任何服务端分配
//   2. 全局唯一 - 多台设备各自生成也不冲突
//   3. 同步后保持稳定 - 上传云端后无需重新映射引用
//
// UUIDv4 天然满足以上三点，档案里的 user_id 外键引用因此永远有效
//
// ============================================================================

// NewID 生成一个新的记录 ID
func NewID() string {
	return uuid.NewString()
}

// Valid 校验字符串是否为合法的记录 ID
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
