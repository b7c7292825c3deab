package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"eskwela/internal/model"
)

var (
	ErrAccountNotFound = errors.New("云端不存在该账户")
	// 云端按手机号建了唯一索引，出现重复说明注册时绕过了校验
	ErrDuplicateMobile = errors.New("手机号已被其他账户使用")
)

// Backend 云端接口
// 云端只需提供按主键 upsert 和按字段查询两种能力，
// upsert 按 id 幂等，同一条记录重复上传结果不变
type Backend interface {
	Ping(ctx context.Context) error
	UpsertAccount(ctx context.Context, account *model.Account) error
	UpsertProfile(ctx context.Context, profile *model.Profile) error
	FindAccountByMobile(ctx context.Context, mobile string) (*model.Account, error)
	ListProfiles(ctx context.Context, accountID string) ([]*model.Profile, error)
}

// Client HTTP 实现
// 每个请求都带超时，网络不通时快速失败而不是挂死
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// 上传负载只含边界字段，本地的 sync_status 等字段不出设备
type accountPayload struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Mobile    string    `json:"mobile"`
	PinHash   string    `json:"pin_hash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type profilePayload struct {
	ID        string         `json:"id"`
	AccountID string         `json:"user_id"`
	Name      string         `json:"name"`
	Role      string         `json:"role"`
	Avatar    string         `json:"avatar"`
	Age       *int           `json:"age,omitempty"`
	Settings  model.Settings `json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// envelope 云端统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("云端健康检查返回 %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) UpsertAccount(ctx context.Context, account *model.Account) error {
	payload := accountPayload{
		ID:        account.ID,
		FullName:  account.FullName,
		Mobile:    account.Mobile,
		PinHash:   account.PinHash,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
	env, err := c.put(ctx, "/api/v1/accounts/"+account.ID, payload)
	if err != nil {
		return err
	}
	if env.Code == codeDuplicateMobile {
		return ErrDuplicateMobile
	}
	if env.Code != 0 {
		return fmt.Errorf("上传账户失败: %s", env.Message)
	}
	return nil
}

func (c *Client) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	payload := profilePayload{
		ID:        profile.ID,
		AccountID: profile.AccountID,
		Name:      profile.Name,
		Role:      profile.Role,
		Avatar:    profile.AvatarToken,
		Age:       profile.Age,
		Settings:  profile.Settings,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
	env, err := c.put(ctx, "/api/v1/profiles/"+profile.ID, payload)
	if err != nil {
		return err
	}
	if env.Code != 0 {
		return fmt.Errorf("上传档案失败: %s", env.Message)
	}
	return nil
}

func (c *Client) FindAccountByMobile(ctx context.Context, mobile string) (*model.Account, error) {
	env, err := c.get(ctx, "/api/v1/accounts?mobile="+url.QueryEscape(mobile))
	if err != nil {
		return nil, err
	}
	if env.Code == codeAccountNotFound {
		return nil, ErrAccountNotFound
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("查询账户失败: %s", env.Message)
	}
	var account model.Account
	if err := json.Unmarshal(env.Data, &account); err != nil {
		return nil, fmt.Errorf("解析云端账户失败: %w", err)
	}
	return &account, nil
}

func (c *Client) ListProfiles(ctx context.Context, accountID string) ([]*model.Profile, error) {
	env, err := c.get(ctx, "/api/v1/profiles?user_id="+url.QueryEscape(accountID))
	if err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("拉取档案失败: %s", env.Message)
	}
	var profiles []*model.Profile
	if err := json.Unmarshal(env.Data, &profiles); err != nil {
		return nil, fmt.Errorf("解析云端档案失败: %w", err)
	}
	return profiles, nil
}

// 与 pkg/response 的业务错误码保持一致
const (
	codeAccountNotFound = 1001
	codeDuplicateMobile = 1002
)

func (c *Client) put(ctx context.Context, path string, payload interface{}) (*envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求云端失败: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("解析云端响应失败: %w", err)
	}
	return &env, nil
}
