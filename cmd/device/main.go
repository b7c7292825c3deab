package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"eskwela/internal/config"
	"eskwela/internal/job"
	"eskwela/internal/localstore"
	"eskwela/internal/remote"
	"eskwela/internal/service"
)

// 设备端数据层守护进程
// 打开本地存储，恢复会话，启动同步引擎和周累计清零任务
func main() {
	cfg := config.LoadConfig("config/config.yaml")

	store := openStore(cfg)
	defer store.Close()

	backend := remote.NewClient(cfg.Device.BackendURL, cfg.Device.RequestTimeout())
	monitor := remote.NewMonitor(backend, cfg.Sync.ProbeInterval())

	accountService := service.NewAccountService(store, backend, monitor, cfg.Device.PinHashCost)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := accountService.LoadSession(ctx); err != nil {
		log.Fatalf("恢复会话失败: %v", err)
	}
	if id := accountService.Session().AccountID(); id != "" {
		log.Printf("本机账户: %s", id)
	} else {
		log.Println("本机尚未注册账户")
	}

	// 启动后台任务
	go monitor.Start(ctx)

	syncEngine := job.NewSyncEngine(store, backend, monitor, cfg)
	go syncEngine.Start(ctx)

	weekReset := job.NewWeekResetJob(store)
	go weekReset.Start(ctx)

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在停止后台任务...")
	cancel()
	log.Println("已退出")
}

func openStore(cfg *config.Config) localstore.KVStore {
	switch cfg.Device.StoreDriver {
	case "redis":
		store, err := localstore.OpenRedis(&cfg.Redis, "eskwela")
		if err != nil {
			log.Fatalf("打开 Redis 存储失败: %v", err)
		}
		return store
	case "memory":
		return localstore.NewMemoryStore()
	default:
		store, err := localstore.OpenSQLite(cfg.Device.StorePath)
		if err != nil {
			log.Fatalf("打开本地存储失败: %v", err)
		}
		return store
	}
}
