package service

import (
	"sync"
)

// Session 本机会话
// 一台设备同一时刻最多记住一个账户；显式持有而不是藏在全局变量里
// authenticated 表示该账户是否已通过本次 PIN 校验（锁屏后为 false，账户仍保留）
type Session struct {
	mu            sync.RWMutex
	accountID     string
	authenticated bool
}

func NewSession() *Session {
	return &Session{}
}

// SetAccount 切换当前账户，同时撤销旧的认证状态
func (s *Session) SetAccount(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = accountID
	s.authenticated = false
}

func (s *Session) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

func (s *Session) Authenticate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
}

// Lock 锁定会话（登出）：认证失效，账户保留
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Reset 清空会话，仅用于恢复出厂设置
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = ""
	s.authenticated = false
}
