package model

import (
	"time"

	"gorm.io/gorm"
)

// Role represents a grantable role. Key is the identifier stored in policy
// rules with the "r:" prefix.
type Role struct {
	ID          uint64 `json:"id" title:"ID" gorm:"primaryKey;autoIncrement;comment:角色ID"`
	Key         string `json:"key" title:"Key" binding:"required" gorm:"size:32;not null;uniqueIndex:uk_key;comment:角色编码"`
	Name        string `json:"name" title:"Name" gorm:"size:64;not null;comment:角色名称"`
	Description string `json:"description" title:"Description" gorm:"size:255;comment:描述"`
	Status      int    `json:"status" title:"Status" gorm:"default:1;index:idx_role_status;comment:状态 1启用 0禁用"`
	CreateTime  int64  `json:"create_time" title:"Created" gorm:"column:create_time;comment:创建时间"`
	UpdateTime  int64  `json:"update_time" title:"Updated" gorm:"column:update_time;comment:更新时间"`
}

// TableName returns the table name for GORM.
func (r *Role) TableName() string {
	return "roles"
}

// BeforeCreate sets the CreateTime and UpdateTime fields.
func (r *Role) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	r.CreateTime = now
	r.UpdateTime = now
	return
}

// BeforeUpdate sets the UpdateTime field.
func (r *Role) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdateTime = time.Now().UnixMilli()
	return
}
