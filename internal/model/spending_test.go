package model

import (
	"testing"
	"time"
)

func TestWeekStartOf(t *testing.T) {
	loc := time.Local

	// 2026-08-26 是周三，所在周起点为 8-24（周一）
	wednesday := time.Date(2026, 8, 26, 15, 30, 0, 0, loc)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, loc)
	if got := WeekStartOf(wednesday); !got.Equal(want) {
		t.Errorf("WeekStartOf(周三) = %v, want %v", got, want)
	}

	// 周一当天属于本周
	monday := time.Date(2026, 8, 24, 0, 0, 1, 0, loc)
	if got := WeekStartOf(monday); !got.Equal(want) {
		t.Errorf("WeekStartOf(周一) = %v, want %v", got, want)
	}

	// 周日属于上一个周一开始的那周
	sunday := time.Date(2026, 8, 30, 23, 59, 0, 0, loc)
	if got := WeekStartOf(sunday); !got.Equal(want) {
		t.Errorf("WeekStartOf(周日) = %v, want %v", got, want)
	}

	// 下周一换周
	nextMonday := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	nextWant := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	if got := WeekStartOf(nextMonday); !got.Equal(nextWant) {
		t.Errorf("WeekStartOf(下周一) = %v, want %v", got, nextWant)
	}
}

func TestWeeklySpend_Stale(t *testing.T) {
	loc := time.Local
	thisWeek := time.Date(2026, 8, 26, 12, 0, 0, 0, loc)

	spend := &WeeklySpend{Total: 100, WeekStart: WeekStartOf(thisWeek)}
	if spend.Stale(thisWeek) {
		t.Error("同一周内不应判定为过期")
	}

	nextWeek := thisWeek.AddDate(0, 0, 7)
	if !spend.Stale(nextWeek) {
		t.Error("跨周后应判定为过期")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleParent, RoleChild, RoleGuest} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false", role)
		}
	}
	for _, role := range []string{"", "admin", "Parent"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true", role)
		}
	}
}
