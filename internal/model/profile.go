package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	RoleParent = "parent"
	RoleChild  = "child"
	RoleGuest  = "guest"
)

// ValidRole 校验角色取值
func ValidRole(role string) bool {
	switch role {
	case RoleParent, RoleChild, RoleGuest:
		return true
	}
	return false
}

// Settings 档案的开放式设置项
// 限定为字符串到字符串的映射，云端存为 JSON 文本
type Settings map[string]string

func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Settings) Scan(value interface{}) error {
	if value == nil {
		*s = Settings{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("settings 字段类型不支持: %T", value)
	}
	if len(data) == 0 {
		*s = Settings{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// Profile 家庭成员档案
// 归属于一个 Account（user_id 外键引用），角色为 parent / child / guest
type Profile struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	AccountID   string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Role        string    `gorm:"type:varchar(16);not null" json:"role"`
	AvatarToken string    `gorm:"column:avatar;type:varchar(64)" json:"avatar"`
	Age         *int      `json:"age,omitempty"`
	Settings    Settings  `gorm:"type:text" json:"settings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 以下字段只存在于设备本地，不写入云端
	SyncStatus string `gorm:"-" json:"sync_status,omitempty"`
	SyncRetry  int    `gorm:"-" json:"sync_retry,omitempty"`
	// 创建档案时若所属账户本身还是 pending，记下账户当时的 ID
	// 用于校验依赖顺序（账户先同步，档案后同步），双方都 synced 后清除
	OriginalOwnerPendingID string `gorm:"-" json:"original_owner_pending_id,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Touch 刷新更新时间
func (p *Profile) Touch() {
	p.UpdatedAt = time.Now()
}

// Validate 基础字段校验
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errors.New("档案名称不能为空")
	}
	if !ValidRole(p.Role) {
		return fmt.Errorf("无效的角色: %s", p.Role)
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 120) {
		return fmt.Errorf("无效的年龄: %d", *p.Age)
	}
	return nil
}
