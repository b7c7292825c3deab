package job

import (
	"context"
	"log"
	"time"

	"eskwela/internal/localstore"
	"eskwela/internal/repository"
)

// WeekResetJob 周消费累计清零任务
// 周期定义：ISO 周，周一 00:00 本地时间为界
// 读取侧对过期值也有懒清零兜底，本任务负责把清零落盘，
// 避免一周没有任何购买时旧累计一直留在存储里
type WeekResetJob struct {
	spendingRepo *repository.SpendingRepository
	stopCh       chan struct{}
	interval     time.Duration
}

func NewWeekResetJob(store localstore.KVStore) *WeekResetJob {
	return &WeekResetJob{
		spendingRepo: repository.NewSpendingRepository(store),
		stopCh:       make(chan struct{}),
		interval:     time.Hour,
	}
}

func (j *WeekResetJob) Start(ctx context.Context) {
	log.Println("[WeekResetJob] 周累计清零任务启动")

	j.resetIfNeeded(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[WeekResetJob] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[WeekResetJob] 任务停止")
			return
		case <-ticker.C:
			j.resetIfNeeded(ctx)
		}
	}
}

func (j *WeekResetJob) Stop() {
	close(j.stopCh)
}

func (j *WeekResetJob) resetIfNeeded(ctx context.Context) {
	reset, err := j.spendingRepo.ResetIfStale(ctx, time.Now())
	if err != nil {
		log.Printf("[WeekResetJob] 清零检查失败: %v", err)
		return
	}
	if reset {
		log.Println("[WeekResetJob] 已跨周，消费累计清零")
	}
}
