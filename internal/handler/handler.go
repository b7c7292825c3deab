package handler

import (
	"errors"
	"strings"

	"eskwela/internal/model"
	"eskwela/pkg/idgen"
	"eskwela/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler 云端参考实现的接口层
// 设备端只依赖两种能力：按主键 upsert、按字段查询
type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ============================================================
// 账户接口
// ============================================================

// UpsertAccount 按 id 幂等写入账户
// PUT /api/v1/accounts/:id
func (h *Handler) UpsertAccount(c *gin.Context) {
	id := c.Param("id")
	if !idgen.Valid(id) {
		response.ParamError(c, "账户 id 不合法")
		return
	}

	var account model.Account
	if err := c.ShouldBindJSON(&account); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}
	if account.ID != id {
		response.ParamError(c, "路径 id 与记录 id 不一致")
		return
	}
	if account.FullName == "" || account.Mobile == "" || account.PinHash == "" {
		response.ParamError(c, "full_name / mobile / pin_hash 不能为空")
		return
	}

	err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "mobile", "pin_hash", "updated_at"}),
		}).
		Create(&account).Error
	if err != nil {
		// 手机号唯一索引冲突：另一个账户已占用该手机号
		if isDuplicateKeyError(err) {
			response.BusinessError(c, response.CodeDuplicateMobile, "手机号已被其他账户使用")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"id": account.ID})
}

// FindAccountByMobile 按手机号查询账户
// GET /api/v1/accounts?mobile=xxx
func (h *Handler) FindAccountByMobile(c *gin.Context) {
	mobile := c.Query("mobile")
	if mobile == "" {
		response.ParamError(c, "mobile 参数不能为空")
		return
	}

	var account model.Account
	err := h.db.WithContext(c.Request.Context()).
		Where("mobile = ?", mobile).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.BusinessError(c, response.CodeAccountNotFound, "账户不存在")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, account)
}

// ============================================================
// 档案接口
// ============================================================

// UpsertProfile 按 id 幂等写入档案
// PUT /api/v1/profiles/:id
func (h *Handler) UpsertProfile(c *gin.Context) {
	id := c.Param("id")
	if !idgen.Valid(id) {
		response.ParamError(c, "档案 id 不合法")
		return
	}

	var profile model.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}
	if profile.ID != id {
		response.ParamError(c, "路径 id 与记录 id 不一致")
		return
	}
	if err := profile.Validate(); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	// 外键引用必须有效：所属账户先于档案到达云端
	var count int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&model.Account{}).
		Where("id = ?", profile.AccountID).
		Count(&count).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if count == 0 {
		response.BusinessError(c, response.CodeAccountMissing, "档案引用的账户不存在")
		return
	}

	err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "avatar", "age", "settings", "updated_at"}),
		}).
		Create(&profile).Error
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"id": profile.ID})
}

// ListProfiles 列出账户名下的档案
// GET /api/v1/profiles?user_id=xxx
func (h *Handler) ListProfiles(c *gin.Context) {
	accountID := c.Query("user_id")
	if accountID == "" {
		response.ParamError(c, "user_id 参数不能为空")
		return
	}

	var profiles []*model.Profile
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", accountID).
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, profiles)
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL 1062
	return strings.Contains(err.Error(), "Duplicate entry")
}
