package service

import (
	"context"
	"errors"
	"sync"

	"eskwela/internal/model"
	"eskwela/internal/remote"
)

// fakeBackend 云端假实现：内存表 + 可注入失败
type fakeBackend struct {
	mu       sync.Mutex
	accounts map[string]model.Account
	profiles map[string]model.Profile

	accountUpserts int
	profileUpserts int
	// 前 N 次账户上传失败
	failAccountUpserts int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: make(map[string]model.Account),
		profiles: make(map[string]model.Profile),
	}
}

func (f *fakeBackend) Ping(ctx context.Context) error { return nil }

func (f *fakeBackend) UpsertAccount(ctx context.Context, account *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountUpserts++
	if f.failAccountUpserts > 0 {
		f.failAccountUpserts--
		return errors.New("模拟网络失败")
	}
	stored := *account
	stored.SyncStatus = ""
	stored.SyncRetry = 0
	f.accounts[account.ID] = stored
	return nil
}

func (f *fakeBackend) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileUpserts++
	stored := *profile
	stored.SyncStatus = ""
	stored.SyncRetry = 0
	stored.OriginalOwnerPendingID = ""
	f.profiles[profile.ID] = stored
	return nil
}

func (f *fakeBackend) FindAccountByMobile(ctx context.Context, mobile string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Mobile == mobile {
			found := account
			return &found, nil
		}
	}
	return nil, remote.ErrAccountNotFound
}

func (f *fakeBackend) ListProfiles(ctx context.Context, accountID string) ([]*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Profile
	for _, profile := range f.profiles {
		if profile.AccountID == accountID {
			found := profile
			out = append(out, &found)
		}
	}
	return out, nil
}

// fakeConnectivity 联网状态假实现
type fakeConnectivity struct {
	mu      sync.Mutex
	online  bool
	changes chan struct{}
}

func newFakeConnectivity(online bool) *fakeConnectivity {
	return &fakeConnectivity{online: online, changes: make(chan struct{}, 1)}
}

func (f *fakeConnectivity) Online() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeConnectivity) Changes() <-chan struct{} { return f.changes }

func (f *fakeConnectivity) setOnline(online bool) {
	f.mu.Lock()
	wasOnline := f.online
	f.online = online
	f.mu.Unlock()
	if online && !wasOnline {
		select {
		case f.changes <- struct{}{}:
		default:
		}
	}
}
