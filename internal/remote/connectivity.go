package remote

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Connectivity 联网状态信号源
// Online 返回当前是否在线；Changes 在离线转在线时收到通知
type Connectivity interface {
	Online() bool
	Changes() <-chan struct{}
}

// Monitor 周期性探测云端健康接口来判断联网状态
type Monitor struct {
	backend  Backend
	interval time.Duration
	online   atomic.Bool
	changes  chan struct{}
	stopCh   chan struct{}
}

func NewMonitor(backend Backend, interval time.Duration) *Monitor {
	return &Monitor{
		backend:  backend,
		interval: interval,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

func (m *Monitor) Online() bool {
	return m.online.Load()
}

func (m *Monitor) Changes() <-chan struct{} {
	return m.changes
}

// Start 启动探测循环，阻塞直到 ctx 取消或 Stop
func (m *Monitor) Start(ctx context.Context) {
	log.Println("[Connectivity] 联网探测启动")

	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Connectivity] 收到停止信号，任务退出")
			return
		case <-m.stopCh:
			log.Println("[Connectivity] 任务停止")
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.backend.Ping(ctx)
	nowOnline := err == nil
	wasOnline := m.online.Swap(nowOnline)

	if nowOnline && !wasOnline {
		log.Println("[Connectivity] 网络恢复")
		// 通道带缓冲，没人消费时不阻塞探测循环
		select {
		case m.changes <- struct{}{}:
		default:
		}
	}
	if !nowOnline && wasOnline {
		log.Printf("[Connectivity] 网络断开: %v", err)
	}
}
