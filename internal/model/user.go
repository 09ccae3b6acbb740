package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents the user model in the database. DeleteTime implements
// soft deletion: live rows carry a NULL delete_time.
type User struct {
	ID         uint64 `json:"id" title:"ID" gorm:"primaryKey;autoIncrement;comment:用户ID"`
	Username   string `json:"username" title:"Username" binding:"required" gorm:"size:64;not null;uniqueIndex:uk_username;comment:用户名"`
	Password   string `json:"-" gorm:"size:255;not null;comment:密码Hash"`
	Email      string `json:"email" title:"Email" gorm:"size:128;comment:邮箱"`
	Avatar     string `json:"avatar" title:"Avatar" gorm:"size:255;comment:头像URL"`
	Salary     int64  `json:"salary" title:"Salary" gorm:"default:0;comment:薪资"`
	Status     int    `json:"status" title:"Status" gorm:"default:1;index:idx_user_status;comment:状态 1启用 0禁用"`
	CreateTime int64  `json:"create_time" title:"Created" gorm:"column:create_time;comment:创建时间(时间戳)"`
	UpdateTime int64  `json:"update_time" title:"Updated" gorm:"column:update_time;comment:更新时间(时间戳)"`
	DeleteTime *int64 `json:"delete_time" title:"Deleted" gorm:"column:delete_time;index;comment:软删除时间"`
}

// UserList contains a list of users and pagination info.
type UserList struct {
	TotalCount int64                    `json:"totalCount"`
	Items      []map[string]interface{} `json:"items"`
}

// TableName returns the table name for GORM.
func (u *User) TableName() string {
	return "users"
}

// BeforeCreate sets the CreateTime and UpdateTime fields.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	u.CreateTime = now
	u.UpdateTime = now
	return
}

// BeforeUpdate sets the UpdateTime field.
func (u *User) BeforeUpdate(tx *gorm.DB) (err error) {
	u.UpdateTime = time.Now().UnixMilli()
	return
}
