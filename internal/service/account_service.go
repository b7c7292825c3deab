package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eskwela/internal/localstore"
	"eskwela/internal/model"
	"eskwela/internal/remote"
	"eskwela/internal/repository"
	"eskwela/pkg/idgen"
	"eskwela/pkg/pincode"
)

// AccountService 账户管理
// 所有写入都先落本地（syncStatus = pending），由同步引擎伺机上传
type AccountService struct {
	store        localstore.KVStore
	accountRepo  *repository.AccountRepository
	profileRepo  *repository.ProfileRepository
	backend      remote.Backend
	connectivity remote.Connectivity
	session      *Session
	hashCost     int
}

func NewAccountService(store localstore.KVStore, backend remote.Backend, connectivity remote.Connectivity, hashCost int) *AccountService {
	return &AccountService{
		store:        store,
		accountRepo:  repository.NewAccountRepository(store),
		profileRepo:  repository.NewProfileRepository(store),
		backend:      backend,
		connectivity: connectivity,
		session:      NewSession(),
		hashCost:     hashCost,
	}
}

// Session 当前会话（显式值，调用方持有）
func (s *AccountService) Session() *Session {
	return s.session
}

// LoadSession 启动时恢复本机记住的账户
func (s *AccountService) LoadSession(ctx context.Context) error {
	account, err := s.accountRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil
		}
		return err
	}
	s.session.SetAccount(account.ID)
	return nil
}

// SignUp 离线注册
// 生成客户端 ID、哈希 PIN、落本地并登记 pendingSignup 指针
// 注册不等于登录：用户必须紧接着用刚设的 PIN 登录一次
func (s *AccountService) SignUp(ctx context.Context, fullName, mobile, pin string) (*model.Account, error) {
	if fullName == "" || mobile == "" {
		return nil, ErrInvalidInput
	}
	if !pincode.ValidFormat(pin) {
		return nil, fmt.Errorf("%w: PIN 码必须是 4-6 位数字", ErrInvalidInput)
	}

	pinHash, err := pincode.Hash(pin, s.hashCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &model.Account{
		ID:         idgen.NewID(),
		FullName:   fullName,
		Mobile:     mobile,
		PinHash:    pinHash,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: model.SyncStatusPending,
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	if err := s.accountRepo.SetPendingSignup(ctx, account.ID); err != nil {
		return nil, err
	}

	s.session.SetAccount(account.ID)
	log.Printf("[AccountService] 离线注册完成: id=%s, mobile=%s", account.ID, account.Mobile)
	return account, nil
}

// Login 用 PIN 解锁本机记住的账户
// 账户还在 pending 状态时拒绝登录（必须先联网完成首次同步）
func (s *AccountService) Login(ctx context.Context, pin string) error {
	account, err := s.accountRepo.Current(ctx)
	if err != nil {
		return err
	}

	if account.SyncStatus == model.SyncStatusPending {
		return ErrSyncPending
	}

	if !pincode.Verify(pin, account.PinHash) {
		return ErrInvalidPin
	}

	s.session.SetAccount(account.ID)
	s.session.Authenticate()
	return nil
}

// LoginByMobile 换机/清数据后的完整登录，需要联网
// 成功后把账户落本地（synced）设为当前账户，并异步拉取其档案
func (s *AccountService) LoginByMobile(ctx context.Context, mobile, pin string) error {
	if !s.connectivity.Online() {
		return ErrOfflineUnavailable
	}

	account, err := s.backend.FindAccountByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, remote.ErrAccountNotFound) {
			return repository.ErrAccountNotFound
		}
		// 网络类错误对交互式操作按离线口径提示
		log.Printf("[AccountService] 按手机号查询账户失败: %v", err)
		return ErrOfflineUnavailable
	}

	if !pincode.Verify(pin, account.PinHash) {
		return ErrInvalidPin
	}

	account.SyncStatus = model.SyncStatusSynced
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return err
	}
	if err := s.accountRepo.SetCurrent(ctx, account.ID); err != nil {
		return err
	}

	s.session.SetAccount(account.ID)
	s.session.Authenticate()
	log.Printf("[AccountService] 手机号登录成功: id=%s", account.ID)

	// 档案下载是尽力而为，失败不影响登录结果
	go s.downloadProfiles(account.ID)

	return nil
}

// VerifyPin 校验 PIN（家长确认场景）
// 没有当前账户时返回 false 而不是报错
func (s *AccountService) VerifyPin(ctx context.Context, pin string) bool {
	account, err := s.accountRepo.Current(ctx)
	if err != nil {
		return false
	}
	return pincode.Verify(pin, account.PinHash)
}

// CurrentAccount 本机当前账户
func (s *AccountService) CurrentAccount(ctx context.Context) (*model.Account, error) {
	return s.accountRepo.Current(ctx)
}

// Logout 锁定会话，账户仍保留在本机
func (s *AccountService) Logout() {
	s.session.Lock()
}

// FactoryReset 清空全部本地状态
func (s *AccountService) FactoryReset(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("清空本地存储失败: %w", err)
	}
	s.session.Reset()
	log.Println("[AccountService] 已恢复出厂设置")
	return nil
}

func (s *AccountService) downloadProfiles(accountID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	profiles, err := s.backend.ListProfiles(ctx, accountID)
	if err != nil {
		log.Printf("[AccountService] 拉取档案失败: accountID=%s, err=%v", accountID, err)
		return
	}

	for _, profile := range profiles {
		profile.SyncStatus = model.SyncStatusSynced
		if err := s.profileRepo.Save(ctx, profile); err != nil {
			log.Printf("[AccountService] 保存云端档案失败: id=%s, err=%v", profile.ID, err)
		}
	}
	log.Printf("[AccountService] 已拉取 %d 份档案: accountID=%s", len(profiles), accountID)
}
