package job

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"eskwela/internal/config"
	"eskwela/internal/localstore"
	"eskwela/internal/model"
	"eskwela/internal/remote"
	"eskwela/internal/repository"
)

// SyncEngine 云端同步引擎
// 扫描本地 pending 记录按依赖顺序上传云端：账户在前，档案在后
// （档案带 user_id 外键引用，账户必须先到云端）
// 触发时机：网络恢复事件、固定轮询、外部手动触发
type SyncEngine struct {
	accountRepo  *repository.AccountRepository
	profileRepo  *repository.ProfileRepository
	backend      remote.Backend
	connectivity remote.Connectivity
	interval     time.Duration
	maxRetry     int

	// 重入保护：同一时刻最多一趟同步，新触发直接忽略
	syncing      atomic.Bool
	pendingCount atomic.Int64

	triggerCh chan struct{}
	stopCh    chan struct{}
}

func NewSyncEngine(store localstore.KVStore, backend remote.Backend, connectivity remote.Connectivity, cfg *config.Config) *SyncEngine {
	return &SyncEngine{
		accountRepo:  repository.NewAccountRepository(store),
		profileRepo:  repository.NewProfileRepository(store),
		backend:      backend,
		connectivity: connectivity,
		interval:     cfg.Sync.SyncInterval(),
		maxRetry:     cfg.Sync.MaxRetryCount,
		triggerCh:    make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
	}
}

// Start 启动同步循环，阻塞直到 ctx 取消或 Stop
func (e *SyncEngine) Start(ctx context.Context) {
	log.Println("[SyncEngine] 同步任务启动")

	// 启动先跑一趟，消化上次运行遗留的 pending
	e.SyncNow(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SyncEngine] 收到停止信号，任务退出")
			return
		case <-e.stopCh:
			log.Println("[SyncEngine] 任务停止")
			return
		case <-e.connectivity.Changes():
			log.Println("[SyncEngine] 网络恢复，触发同步")
			e.SyncNow(ctx)
		case <-e.triggerCh:
			e.SyncNow(ctx)
		case <-ticker.C:
			e.SyncNow(ctx)
		}
	}
}

func (e *SyncEngine) Stop() {
	close(e.stopCh)
}

// Trigger 外部按需触发一次同步（非阻塞）
func (e *SyncEngine) Trigger() {
	select {
	case e.triggerCh <- struct{}{}:
	default:
	}
}

// IsSyncing 是否有同步趟正在进行（UI 徽标用）
func (e *SyncEngine) IsSyncing() bool {
	return e.syncing.Load()
}

// PendingCount 最近一次统计的待同步记录数
func (e *SyncEngine) PendingCount() int64 {
	return e.pendingCount.Load()
}

// SyncNow 立即执行一趟同步
// 离线或已有同步趟在跑时直接返回；单条记录失败只记日志，
// 该记录保持 pending 等下一趟重试，不影响同趟的其他记录
func (e *SyncEngine) SyncNow(ctx context.Context) {
	if !e.connectivity.Online() {
		e.refreshPendingCount(ctx)
		return
	}
	if !e.syncing.CompareAndSwap(false, true) {
		return
	}
	defer e.syncing.Store(false)

	e.syncAccounts(ctx)
	e.syncProfiles(ctx)
	e.refreshPendingCount(ctx)
}

// RetryFailed 把 error 状态的记录打回 pending，下一趟重新上传
func (e *SyncEngine) RetryFailed(ctx context.Context) error {
	accounts, err := e.accountRepo.ListByStatus(ctx, model.SyncStatusError)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		account.SyncStatus = model.SyncStatusPending
		account.SyncRetry = 0
		if err := e.accountRepo.Save(ctx, account); err != nil {
			return err
		}
	}

	profiles, err := e.profileRepo.ListByStatus(ctx, model.SyncStatusError)
	if err != nil {
		return err
	}
	for _, profile := range profiles {
		profile.SyncStatus = model.SyncStatusPending
		profile.SyncRetry = 0
		if err := e.profileRepo.Save(ctx, profile); err != nil {
			return err
		}
	}

	e.Trigger()
	return nil
}

// 第一阶段：上传 pending 账户
func (e *SyncEngine) syncAccounts(ctx context.Context) {
	accounts, err := e.accountRepo.ListPending(ctx)
	if err != nil {
		log.Printf("[SyncEngine] 扫描待同步账户失败: %v", err)
		return
	}

	for _, account := range accounts {
		if err := e.backend.UpsertAccount(ctx, account); err != nil {
			log.Printf("[SyncEngine] 上传账户失败: id=%s, err=%v", account.ID, err)
			e.recordAccountFailure(ctx, account)
			continue
		}

		account.SyncStatus = model.SyncStatusSynced
		account.SyncRetry = 0
		if err := e.accountRepo.Save(ctx, account); err != nil {
			log.Printf("[SyncEngine] 更新账户同步状态失败: id=%s, err=%v", account.ID, err)
			continue
		}
		log.Printf("[SyncEngine] 账户已同步: id=%s", account.ID)

		e.promoteIfPendingSignup(ctx, account)
	}
}

// 注册产生的账户完成首次上传后，把 pendingSignup 指针晋升为 current
// ID 从创建起就是全局唯一的，晋升不涉及任何引用重映射
func (e *SyncEngine) promoteIfPendingSignup(ctx context.Context, account *model.Account) {
	pendingID, err := e.accountRepo.PendingSignupID(ctx)
	if err != nil {
		log.Printf("[SyncEngine] 读取 pendingSignup 指针失败: %v", err)
		return
	}
	if pendingID != account.ID {
		return
	}

	if err := e.accountRepo.SetCurrent(ctx, account.ID); err != nil {
		log.Printf("[SyncEngine] 设置 current 指针失败: id=%s, err=%v", account.ID, err)
		return
	}
	if err := e.accountRepo.ClearPendingSignup(ctx); err != nil {
		log.Printf("[SyncEngine] 清除 pendingSignup 指针失败: %v", err)
		return
	}
	log.Printf("[SyncEngine] 注册账户已晋升为当前账户: id=%s", account.ID)
}

// 第二阶段：上传 pending 档案（仅当所属账户已同步）
func (e *SyncEngine) syncProfiles(ctx context.Context) {
	profiles, err := e.profileRepo.ListPending(ctx)
	if err != nil {
		log.Printf("[SyncEngine] 扫描待同步档案失败: %v", err)
		return
	}

	for _, profile := range profiles {
		owner, err := e.accountRepo.Get(ctx, profile.AccountID)
		if err != nil {
			log.Printf("[SyncEngine] 档案所属账户不可读: profileID=%s, accountID=%s, err=%v",
				profile.ID, profile.AccountID, err)
			continue
		}
		if owner.SyncStatus != model.SyncStatusSynced {
			// 依赖顺序约束：账户没同步成功前档案必须留在 pending
			log.Printf("[SyncEngine] 档案等待所属账户先同步: profileID=%s, accountID=%s",
				profile.ID, profile.AccountID)
			continue
		}

		if err := e.backend.UpsertProfile(ctx, profile); err != nil {
			log.Printf("[SyncEngine] 上传档案失败: id=%s, err=%v", profile.ID, err)
			e.recordProfileFailure(ctx, profile)
			continue
		}

		profile.SyncStatus = model.SyncStatusSynced
		profile.SyncRetry = 0
		profile.OriginalOwnerPendingID = ""
		if err := e.profileRepo.Save(ctx, profile); err != nil {
			log.Printf("[SyncEngine] 更新档案同步状态失败: id=%s, err=%v", profile.ID, err)
			continue
		}
		log.Printf("[SyncEngine] 档案已同步: id=%s", profile.ID)
	}
}

func (e *SyncEngine) recordAccountFailure(ctx context.Context, account *model.Account) {
	account.SyncRetry++
	if account.SyncRetry >= e.maxRetry {
		account.SyncStatus = model.SyncStatusError
		log.Printf("[SyncEngine] 账户连续失败 %d 次，标记为 error: id=%s", account.SyncRetry, account.ID)
	}
	if err := e.accountRepo.Save(ctx, account); err != nil {
		log.Printf("[SyncEngine] 记录账户失败次数出错: id=%s, err=%v", account.ID, err)
	}
}

func (e *SyncEngine) recordProfileFailure(ctx context.Context, profile *model.Profile) {
	profile.SyncRetry++
	if profile.SyncRetry >= e.maxRetry {
		profile.SyncStatus = model.SyncStatusError
		log.Printf("[SyncEngine] 档案连续失败 %d 次，标记为 error: id=%s", profile.SyncRetry, profile.ID)
	}
	if err := e.profileRepo.Save(ctx, profile); err != nil {
		log.Printf("[SyncEngine] 记录档案失败次数出错: id=%s, err=%v", profile.ID, err)
	}
}

func (e *SyncEngine) refreshPendingCount(ctx context.Context) {
	var count int64

	accounts, err := e.accountRepo.ListPending(ctx)
	if err != nil {
		log.Printf("[SyncEngine] 统计待同步账户失败: %v", err)
		return
	}
	count += int64(len(accounts))

	profiles, err := e.profileRepo.ListPending(ctx)
	if err != nil {
		log.Printf("[SyncEngine] 统计待同步档案失败: %v", err)
		return
	}
	count += int64(len(profiles))

	e.pendingCount.Store(count)
}
