package model

import (
	"github.com/astralvault/page-sync-service/pkg/timex"
)

// Page 页面数据模型
// 页面以扁平父指针列表存储，层级关系由客户端按需推导
type Page struct {
	ID               string     `gorm:"column:id;primaryKey" json:"id"`                                       // 页面ID（UUID）
	UID              int64      `gorm:"column:uid;index" json:"uid"`                                          // 用户ID
	Title            string     `gorm:"column:title" json:"title"`                                            // 标题
	Icon             string     `gorm:"column:icon" json:"icon"`                                              // 图标
	CoverImage       string     `gorm:"column:cover_image" json:"coverImage"`                                 // 封面图 URL
	Content          string     `gorm:"column:content" json:"content"`                                        // 富文本内容（JSON 文本，服务端不解析）
	Tags             []string   `gorm:"column:tags;serializer:json" json:"tags"`                              // 标签
	ParentID         string     `gorm:"column:parent_id;index" json:"parentId"`                               // 父页面ID，空串表示根
	IsExpanded       bool       `gorm:"column:is_expanded" json:"isExpanded"`                                 // 侧栏展开状态
	IsDeleted        int64      `gorm:"column:is_deleted;index" json:"isDeleted"`                             // 软删除标记
	CreatedTimestamp int64      `gorm:"column:created_timestamp" json:"createdTimestamp"`                     // 创建时间戳（毫秒）
	UpdatedTimestamp int64      `gorm:"column:updated_timestamp;index" json:"updatedTimestamp"`               // 更新时间戳（毫秒）
	DeletedTimestamp int64      `gorm:"column:deleted_timestamp" json:"deletedTimestamp"`                     // 删除时间戳（毫秒）
	CreatedAt        timex.Time `gorm:"column:created_at;type:datetime;autoUpdateTime:false" json:"createdAt"` // 创建时间
	UpdatedAt        timex.Time `gorm:"column:updated_at;type:datetime;autoUpdateTime:false" json:"updatedAt"` // 更新时间
}

// TableName 返回表名
func (*Page) TableName() string {
	return "page"
}
