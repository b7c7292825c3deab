package job

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eskwela/internal/localstore"
	"eskwela/internal/model"
	"eskwela/internal/repository"
)

func TestWeekResetJob_ResetsStaleSpend(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemoryStore()
	spendingRepo := repository.NewSpendingRepository(store)

	// 上上周的累计
	stale := &model.WeeklySpend{
		Total:     320,
		WeekStart: model.WeekStartOf(time.Now().AddDate(0, 0, -14)),
	}
	require.NoError(t, spendingRepo.SaveWeeklySpend(ctx, stale))

	job := NewWeekResetJob(store)
	job.resetIfNeeded(ctx)

	// 读取侧有懒清零视图，这里直接看落盘的原始记录
	data, err := store.Get(ctx, localstore.KeyWeeklySpend)
	require.NoError(t, err)
	var stored model.WeeklySpend
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Equal(t, int64(0), stored.Total)
	require.True(t, stored.WeekStart.Equal(model.WeekStartOf(time.Now())))
}

func TestWeekResetJob_KeepsCurrentWeek(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemoryStore()
	spendingRepo := repository.NewSpendingRepository(store)

	current := &model.WeeklySpend{
		Total:     120,
		WeekStart: model.WeekStartOf(time.Now()),
	}
	require.NoError(t, spendingRepo.SaveWeeklySpend(ctx, current))

	job := NewWeekResetJob(store)
	job.resetIfNeeded(ctx)

	spend, err := spendingRepo.WeeklySpend(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(120), spend.Total, "本周内的累计不应被清零")
}
