package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eskwela/internal/model"
)

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		writeEnvelope(w, 0, "success", "ok")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.Ping(context.Background()))
}

func TestPing_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.Error(t, client.Ping(context.Background()))
}

func TestUpsertAccount(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/accounts/acc-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeEnvelope(w, 0, "success", nil)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	account := &model.Account{
		ID:         "acc-1",
		FullName:   "测试家长",
		Mobile:     "13800000001",
		PinHash:    "$2a$10$hash",
		SyncStatus: model.SyncStatusPending,
		SyncRetry:  3,
	}
	require.NoError(t, client.UpsertAccount(context.Background(), account))

	// 本地同步状态字段不出设备
	require.Equal(t, "acc-1", received["id"])
	require.Equal(t, "13800000001", received["mobile"])
	require.NotContains(t, received, "sync_status")
	require.NotContains(t, received, "sync_retry")
}

func TestUpsertAccount_DuplicateMobile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, codeDuplicateMobile, "手机号已被占用", nil)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.UpsertAccount(context.Background(), &model.Account{ID: "acc-1"})
	require.ErrorIs(t, err, ErrDuplicateMobile)
}

func TestUpsertProfile(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/profiles/prof-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeEnvelope(w, 0, "success", nil)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	age := 8
	profile := &model.Profile{
		ID:          "prof-1",
		AccountID:   "acc-1",
		Name:        "小孩",
		Role:        model.RoleChild,
		AvatarToken: "avatar-3",
		Age:         &age,
		Settings:    model.Settings{"theme": "dark"},
	}
	require.NoError(t, client.UpsertProfile(context.Background(), profile))

	require.Equal(t, "acc-1", received["user_id"])
	require.Equal(t, "avatar-3", received["avatar"])
	require.NotContains(t, received, "sync_status")
}

func TestFindAccountByMobile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts", r.URL.Path)
		require.Equal(t, "13800000001", r.URL.Query().Get("mobile"))
		writeEnvelope(w, 0, "success", map[string]interface{}{
			"id":        "acc-1",
			"full_name": "测试家长",
			"mobile":    "13800000001",
			"pin_hash":  "$2a$10$hash",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	account, err := client.FindAccountByMobile(context.Background(), "13800000001")
	require.NoError(t, err)
	require.Equal(t, "acc-1", account.ID)
	require.Equal(t, "测试家长", account.FullName)
}

func TestFindAccountByMobile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, codeAccountNotFound, "账户不存在", nil)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FindAccountByMobile(context.Background(), "13800000001")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestListProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/profiles", r.URL.Path)
		require.Equal(t, "acc-1", r.URL.Query().Get("user_id"))
		writeEnvelope(w, 0, "success", []map[string]interface{}{
			{"id": "prof-1", "user_id": "acc-1", "name": "小孩", "role": "child"},
			{"id": "prof-2", "user_id": "acc-1", "name": "家长", "role": "parent"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	profiles, err := client.ListProfiles(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	require.Equal(t, "prof-1", profiles[0].ID)
	require.Equal(t, "acc-1", profiles[0].AccountID)
}

func TestClient_ServerUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	require.Error(t, client.Ping(context.Background()))
	_, err := client.FindAccountByMobile(context.Background(), "13800000001")
	require.Error(t, err)
}
