package model

import (
	"time"
)

// SpendingPolicy 消费保护策略（单设备一份，只在本地生效，不参与云端同步）
// WeeklyLimit 为 0 表示不限额
type SpendingPolicy struct {
	WeeklyLimit  int64 `json:"weekly_limit"`
	PinThreshold int64 `json:"pin_threshold"` // 超过该金额的购买需要家长 PIN 确认
	RequirePin   bool  `json:"require_pin"`
}

// WeeklySpend 本周累计消费
// WeekStart 标记累计所属的周（周一 00:00 本地时间），跨周后清零
type WeeklySpend struct {
	Total     int64     `json:"total"`
	WeekStart time.Time `json:"week_start"`
}

// WeekStartOf 返回 t 所在 ISO 周的起点（周一 00:00，本地时区）
func WeekStartOf(t time.Time) time.Time {
	t = t.Local()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // 周日算上一周的第 7 天
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}

// Stale 判断累计值是否已过期（属于更早的周）
func (w *WeeklySpend) Stale(now time.Time) bool {
	return !w.WeekStart.Equal(WeekStartOf(now))
}
