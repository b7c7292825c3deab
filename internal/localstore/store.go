package localstore

import (
	"context"
	"errors"
	"strings"
)

// 本地键空间约定
// account:<id> / profile:<id> 为记录键，其余为单例键
const (
	KeyPrefixAccount = "account:"
	KeyPrefixProfile = "profile:"

	KeyPendingSignup  = "account:pendingSignup"
	KeyCurrentAccount = "account:current"
	KeySpendingPolicy = "spendingPolicy"
	KeyWeeklySpend    = "weeklySpendCounter"
)

var ErrKeyNotFound = errors.New("本地存储中不存在该键")

// KVStore 设备本地持久化存储
// 应用离线时所有读写都落在这里，进程重启后数据仍在
// 没有二级索引，按类型的扫描通过 Keys + 前缀过滤实现
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	// Clear 清空全部本地状态，仅用于"恢复出厂设置"
	Clear(ctx context.Context) error
	Close() error
}

// IsRecordKey 判断是否为账户/档案记录键（排除单例指针键）
func IsRecordKey(key, prefix string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	return key != KeyPendingSignup && key != KeyCurrentAccount
}
