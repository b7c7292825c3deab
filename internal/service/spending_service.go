package service

import (
	"context"
	"log"
	"time"

	"eskwela/internal/config"
	"eskwela/internal/localstore"
	"eskwela/internal/model"
	"eskwela/internal/repository"
)

// SpendingService 消费保护
// 只做预算评估和累计记账；PIN 确认是调用方（UI 层）的前置动作，
// 本服务不校验调用方是否真的做过确认（NeedsPinConfirmation 供其查询）
type SpendingService struct {
	spendingRepo *repository.SpendingRepository
	defaults     config.SpendingConfig
}

func NewSpendingService(store localstore.KVStore, defaults config.SpendingConfig) *SpendingService {
	return &SpendingService{
		spendingRepo: repository.NewSpendingRepository(store),
		defaults:     defaults,
	}
}

// Policy 读取消费策略，首次使用时用默认值落盘
func (s *SpendingService) Policy(ctx context.Context) (*model.SpendingPolicy, error) {
	policy, err := s.spendingRepo.Policy(ctx)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		return policy, nil
	}

	policy = &model.SpendingPolicy{
		WeeklyLimit:  s.defaults.DefaultWeeklyLimit,
		PinThreshold: s.defaults.DefaultPinThreshold,
		RequirePin:   s.defaults.DefaultRequirePin,
	}
	if err := s.spendingRepo.SavePolicy(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// UpdatePolicy 修改消费策略，立即落盘（策略只在本地生效，没有 pending 状态）
func (s *SpendingService) UpdatePolicy(ctx context.Context, policy *model.SpendingPolicy) error {
	if policy.WeeklyLimit < 0 || policy.PinThreshold < 0 {
		return ErrInvalidInput
	}
	return s.spendingRepo.SavePolicy(ctx, policy)
}

// SpentThisWeek 本周已消费金额
func (s *SpendingService) SpentThisWeek(ctx context.Context) (int64, error) {
	spend, err := s.spendingRepo.WeeklySpend(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	return spend.Total, nil
}

// NeedsPinConfirmation 该金额的购买是否需要家长 PIN 确认
// 调用方应在调用 Purchase 之前先走完确认流程
func (s *SpendingService) NeedsPinConfirmation(ctx context.Context, amount int64) (bool, error) {
	policy, err := s.Policy(ctx)
	if err != nil {
		return false, err
	}
	return policy.RequirePin && amount > policy.PinThreshold, nil
}

// Purchase 执行一笔购买
// 超出周预算返回 LimitExceededError（携带已用/上限），否则累计并立即落盘
func (s *SpendingService) Purchase(ctx context.Context, amount int64, description string) error {
	if amount <= 0 {
		return ErrInvalidInput
	}

	policy, err := s.Policy(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	spend, err := s.spendingRepo.WeeklySpend(ctx, now)
	if err != nil {
		return err
	}

	if policy.WeeklyLimit > 0 && spend.Total+amount > policy.WeeklyLimit {
		return &LimitExceededError{Used: spend.Total, Limit: policy.WeeklyLimit}
	}

	spend.Total += amount
	spend.WeekStart = model.WeekStartOf(now)
	if err := s.spendingRepo.SaveWeeklySpend(ctx, spend); err != nil {
		return err
	}

	log.Printf("[SpendingService] 购买成功: amount=%d, desc=%s, 本周累计=%d", amount, description, spend.Total)
	return nil
}
