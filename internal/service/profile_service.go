package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"eskwela/internal/localstore"
	"eskwela/internal/model"
	"eskwela/internal/repository"
	"eskwela/pkg/idgen"
)

// ProfileService 家庭成员档案管理
// 档案必须归属一个有效账户；本地任何修改都把记录打回 pending
type ProfileService struct {
	accountRepo *repository.AccountRepository
	profileRepo *repository.ProfileRepository
}

func NewProfileService(store localstore.KVStore) *ProfileService {
	return &ProfileService{
		accountRepo: repository.NewAccountRepository(store),
		profileRepo: repository.NewProfileRepository(store),
	}
}

// CreateProfileInput 新建档案的输入
type CreateProfileInput struct {
	Name        string
	Role        string
	AvatarToken string
	Age         *int
	Settings    model.Settings
}

// CreateProfile 新建档案，归属当前账户
// 账户本身还是 pending 时，在档案上记下账户 ID，供同步引擎校验依赖顺序
func (s *ProfileService) CreateProfile(ctx context.Context, input CreateProfileInput) (*model.Profile, error) {
	account, err := s.accountRepo.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	profile := &model.Profile{
		ID:          idgen.NewID(),
		AccountID:   account.ID,
		Name:        input.Name,
		Role:        input.Role,
		AvatarToken: input.AvatarToken,
		Age:         input.Age,
		Settings:    input.Settings,
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncStatus:  model.SyncStatusPending,
	}
	if profile.Settings == nil {
		profile.Settings = model.Settings{}
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if account.SyncStatus == model.SyncStatusPending {
		profile.OriginalOwnerPendingID = account.ID
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("[ProfileService] 新建档案: id=%s, role=%s, accountID=%s", profile.ID, profile.Role, profile.AccountID)
	return profile, nil
}

// UpdateProfile 更新档案
// 本地编辑使之前的同步状态失效，强制打回 pending 并清零重试计数
func (s *ProfileService) UpdateProfile(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.profileRepo.Get(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	// 归属关系不允许改
	profile.AccountID = existing.AccountID
	profile.CreatedAt = existing.CreatedAt
	profile.OriginalOwnerPendingID = existing.OriginalOwnerPendingID

	profile.Touch()
	profile.SyncStatus = model.SyncStatusPending
	profile.SyncRetry = 0

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListProfiles 当前账户名下的全部档案
func (s *ProfileService) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	account, err := s.accountRepo.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.profileRepo.ListByAccount(ctx, account.ID)
}

// GetProfile 按 ID 读取档案
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	return s.profileRepo.Get(ctx, id)
}
