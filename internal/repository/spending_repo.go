package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eskwela/internal/localstore"
	"eskwela/internal/model"
)

// SpendingRepository 消费策略与本周累计的本地读写
// 两者都是单例键，只在本地生效，不参与云端同步
type SpendingRepository struct {
	store localstore.KVStore
}

func NewSpendingRepository(store localstore.KVStore) *SpendingRepository {
	return &SpendingRepository{store: store}
}

// Policy 读取消费策略，从未设置过时返回 (nil, nil)
func (r *SpendingRepository) Policy(ctx context.Context) (*model.SpendingPolicy, error) {
	data, err := r.store.Get(ctx, localstore.KeySpendingPolicy)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取本地存储失败: %w", err)
	}
	var policy model.SpendingPolicy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("反序列化消费策略失败: %w", err)
	}
	return &policy, nil
}

func (r *SpendingRepository) SavePolicy(ctx context.Context, policy *model.SpendingPolicy) error {
	data, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("序列化消费策略失败: %w", err)
	}
	if err := r.store.Set(ctx, localstore.KeySpendingPolicy, data); err != nil {
		return fmt.Errorf("写入本地存储失败: %w", err)
	}
	return nil
}

// WeeklySpend 读取本周累计
// 记录不存在或属于更早的周时，返回当前周的零值
func (r *SpendingRepository) WeeklySpend(ctx context.Context, now time.Time) (*model.WeeklySpend, error) {
	fresh := &model.WeeklySpend{Total: 0, WeekStart: model.WeekStartOf(now)}

	data, err := r.store.Get(ctx, localstore.KeyWeeklySpend)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return fresh, nil
		}
		return nil, fmt.Errorf("读取本地存储失败: %w", err)
	}

	var spend model.WeeklySpend
	if err := json.Unmarshal(data, &spend); err != nil {
		return nil, fmt.Errorf("反序列化消费累计失败: %w", err)
	}
	if spend.Stale(now) {
		return fresh, nil
	}
	return &spend, nil
}

// ResetIfStale 跨周后把累计值清零落盘，返回是否发生了重置
// WeeklySpend 读取时已经对过期值做了归零视图，这里负责把归零真正持久化
func (r *SpendingRepository) ResetIfStale(ctx context.Context, now time.Time) (bool, error) {
	data, err := r.store.Get(ctx, localstore.KeyWeeklySpend)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("读取本地存储失败: %w", err)
	}

	var spend model.WeeklySpend
	if err := json.Unmarshal(data, &spend); err != nil {
		return false, fmt.Errorf("反序列化消费累计失败: %w", err)
	}
	if !spend.Stale(now) {
		return false, nil
	}

	fresh := &model.WeeklySpend{Total: 0, WeekStart: model.WeekStartOf(now)}
	if err := r.SaveWeeklySpend(ctx, fresh); err != nil {
		return false, err
	}
	return true, nil
}

func (r *SpendingRepository) SaveWeeklySpend(ctx context.Context, spend *model.WeeklySpend) error {
	data, err := json.Marshal(spend)
	if err != nil {
		return fmt.Errorf("序列化消费累计失败: %w", err)
	}
	if err := r.store.Set(ctx, localstore.KeyWeeklySpend, data); err != nil {
		return fmt.Errorf("写入本地存储失败: %w", err)
	}
	return nil
}
