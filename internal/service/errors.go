package service

import (
	"errors"
	"fmt"
)

// 对外错误口径
// 所有交互式操作都返回明确的失败原因，UI 层直接展示，不需要兜底 catch
var (
	ErrInvalidInput = errors.New("输入参数无效")
	ErrInvalidPin   = errors.New("PIN 码错误")
	// 注册后必须先完成一次云端同步才能登录（信任引导规则，不是技术限制）
	ErrSyncPending        = errors.New("账户尚未完成首次同步，请联网后再试")
	ErrOfflineUnavailable = errors.New("该操作需要联网，请检查网络后重试")
)

// LimitExceededError 超出本周消费上限
// 属于策略拒绝而非系统故障，携带已用/上限金额供 UI 展示
type LimitExceededError struct {
	Used  int64
	Limit int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("已达本周消费上限（已用 %d / 上限 %d）", e.Used, e.Limit)
}
