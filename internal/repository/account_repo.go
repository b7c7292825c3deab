package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eskwela/internal/localstore"
	"eskwela/internal/model"
)

var (
	ErrAccountNotFound = errors.New("账户不存在")
	ErrProfileNotFound = errors.New("档案不存在")
)

// AccountRepository 账户的本地读写
// 记录存在 account:<id>，另有两个指针键只存账户 ID：
//   account:pendingSignup - 注册后尚未完成首次同步的账户
//   account:current       - 本机当前登录的账户（一台设备最多一个）
type AccountRepository struct {
	store localstore.KVStore
}

func NewAccountRepository(store localstore.KVStore) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Save(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("序列化账户失败: %w", err)
	}
	if err := r.store.Set(ctx, localstore.KeyPrefixAccount+account.ID, data); err != nil {
		return fmt.Errorf("写入本地存储失败: %w", err)
	}
	return nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (*model.Account, error) {
	data, err := r.store.Get(ctx, localstore.KeyPrefixAccount+id)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("读取本地存储失败: %w", err)
	}
	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("反序列化账户失败: %w", err)
	}
	return &account, nil
}

// Current 返回本机当前账户
// 优先取 current 指针，其次取还未完成首次同步的 pendingSignup 指针
func (r *AccountRepository) Current(ctx context.Context) (*model.Account, error) {
	for _, key := range []string{localstore.KeyCurrentAccount, localstore.KeyPendingSignup} {
		id, err := r.pointer(ctx, key)
		if err != nil {
			return nil, err
		}
		if id == "" {
			continue
		}
		return r.Get(ctx, id)
	}
	return nil, ErrAccountNotFound
}

func (r *AccountRepository) SetPendingSignup(ctx context.Context, id string) error {
	return r.setPointer(ctx, localstore.KeyPendingSignup, id)
}

func (r *AccountRepository) PendingSignupID(ctx context.Context) (string, error) {
	return r.pointer(ctx, localstore.KeyPendingSignup)
}

func (r *AccountRepository) ClearPendingSignup(ctx context.Context) error {
	if err := r.store.Remove(ctx, localstore.KeyPendingSignup); err != nil {
		return fmt.Errorf("写入本地存储失败: %w", err)
	}
	return nil
}

func (r *AccountRepository) SetCurrent(ctx context.Context, id string) error {
	return r.setPointer(ctx, localstore.KeyCurrentAccount, id)
}

func (r *AccountRepository) CurrentID(ctx context.Context) (string, error) {
	return r.pointer(ctx, localstore.KeyCurrentAccount)
}

// ListPending 扫描所有待同步的账户记录
func (r *AccountRepository) ListPending(ctx context.Context) ([]*model.Account, error) {
	return r.ListByStatus(ctx, model.SyncStatusPending)
}

// ListByStatus 按同步状态扫描账户记录
func (r *AccountRepository) ListByStatus(ctx context.Context, status string) ([]*model.Account, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取本地存储失败: %w", err)
	}

	var matched []*model.Account
	for _, key := range keys {
		if !localstore.IsRecordKey(key, localstore.KeyPrefixAccount) {
			continue
		}
		data, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("读取本地存储失败: %w", err)
		}
		var account model.Account
		if err := json.Unmarshal(data, &account); err != nil {
			return nil, fmt.Errorf("反序列化账户失败: %w", err)
		}
		if account.SyncStatus == status {
			matched = append(matched, &account)
		}
	}
	return matched, nil
}

func (r *AccountRepository) setPointer(ctx context.Context, key, id string) error {
	if err := r.store.Set(ctx, key, []byte(id)); err != nil {
		return fmt.Errorf("写入本地存储失败: %w", err)
	}
	return nil
}

// pointer 读取指针键，键不存在时返回空串
func (r *AccountRepository) pointer(ctx context.Context, key string) (string, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("读取本地存储失败: %w", err)
	}
	return string(data), nil
}
