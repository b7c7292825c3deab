package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eskwela/internal/localstore"
	"eskwela/internal/model"
)

// ProfileRepository 家庭成员档案的本地读写，记录存在 profile:<id>
type ProfileRepository struct {
	store localstore.KVStore
}

func NewProfileRepository(store localstore.KVStore) *ProfileRepository {
	return &ProfileRepository{store: store}
}

func (r *ProfileRepository) Save(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("序列化档案失败: %w", err)
	}
	if err := r.store.Set(ctx, localstore.KeyPrefixProfile+profile.ID, data); err != nil {
		return fmt.Errorf("写入本地存储失败: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*model.Profile, error) {
	data, err := r.store.Get(ctx, localstore.KeyPrefixProfile+id)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("读取本地存储失败: %w", err)
	}
	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("反序列化档案失败: %w", err)
	}
	return &profile, nil
}

// List 返回全部本地档案
func (r *ProfileRepository) List(ctx context.Context) ([]*model.Profile, error) {
	return r.scan(ctx, func(*model.Profile) bool { return true })
}

// ListByAccount 返回归属指定账户的档案
func (r *ProfileRepository) ListByAccount(ctx context.Context, accountID string) ([]*model.Profile, error) {
	return r.scan(ctx, func(p *model.Profile) bool { return p.AccountID == accountID })
}

// ListPending 返回待同步的档案
func (r *ProfileRepository) ListPending(ctx context.Context) ([]*model.Profile, error) {
	return r.ListByStatus(ctx, model.SyncStatusPending)
}

// ListByStatus 按同步状态扫描档案
func (r *ProfileRepository) ListByStatus(ctx context.Context, status string) ([]*model.Profile, error) {
	return r.scan(ctx, func(p *model.Profile) bool { return p.SyncStatus == status })
}

// scan 没有二级索引，所有条件查询都走全量键扫描
func (r *ProfileRepository) scan(ctx context.Context, match func(*model.Profile) bool) ([]*model.Profile, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取本地存储失败: %w", err)
	}

	var profiles []*model.Profile
	for _, key := range keys {
		if !localstore.IsRecordKey(key, localstore.KeyPrefixProfile) {
			continue
		}
		data, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("读取本地存储失败: %w", err)
		}
		var profile model.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("反序列化档案失败: %w", err)
		}
		if match(&profile) {
			profiles = append(profiles, &profile)
		}
	}
	return profiles, nil
}
