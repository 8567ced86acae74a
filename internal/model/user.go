package model

import (
	"github.com/astralvault/page-sync-service/pkg/timex"
)

// User 用户数据模型
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`                         // 用户ID
	Email     string     `gorm:"column:email;uniqueIndex" json:"email"`                                  // 邮箱
	Nickname  string     `gorm:"column:nickname" json:"nickname"`                                        // 昵称
	Password  string     `gorm:"column:password" json:"-"`                                               // 密码哈希
	Avatar    string     `gorm:"column:avatar" json:"avatar"`                                            // 头像 URL
	IsPremium bool       `gorm:"column:is_premium" json:"isPremium"`                                     // 是否高级用户
	IsDeleted int64      `gorm:"column:is_deleted" json:"isDeleted"`                                     // 软删除标记
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;autoUpdateTime:false" json:"createdAt"`  // 注册时间
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;autoUpdateTime:false" json:"updatedAt"`  // 更新时间
}

// TableName 返回表名
func (*User) TableName() string {
	return "user"
}
