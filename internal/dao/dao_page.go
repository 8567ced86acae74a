package dao

import (
	"errors"

	"github.com/astralvault/page-sync-service/internal/model"
	"github.com/astralvault/page-sync-service/pkg/timex"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageSet 页面写入集合
type PageSet struct {
	UID        int64    `json:"uid"`
	Title      string   `json:"title"`      // 标题
	Icon       string   `json:"icon"`       // 图标
	CoverImage string   `json:"coverImage"` // 封面图
	Content    string   `json:"content"`    // 内容（JSON 文本）
	Tags       []string `json:"tags"`       // 标签
	ParentID   string   `json:"parentId"`   // 父页面ID
	IsExpanded bool     `json:"isExpanded"` // 展开状态
}

// PageGetAllByUID 获取用户全部未删除页面，按更新时间倒序
func (d *Dao) PageGetAllByUID(uid int64) ([]*model.Page, error) {
	var pages []*model.Page
	err := d.db.WithContext(d.ctx).
		Where("uid = ? AND is_deleted = 0", uid).
		Order("updated_timestamp DESC").
		Find(&pages).Error
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// PageGetByID 根据ID获取页面
func (d *Dao) PageGetByID(id string, uid int64) (*model.Page, error) {
	var page model.Page
	err := d.db.WithContext(d.ctx).
		Where("id = ? AND uid = ? AND is_deleted = 0", id, uid).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

// PageCreate 创建页面，服务端分配 ID 和时间戳
func (d *Dao) PageCreate(set *PageSet) (*model.Page, error) {
	now := timex.Now()
	page := &model.Page{
		ID:               uuid.NewString(),
		UID:              set.UID,
		Title:            set.Title,
		Icon:             set.Icon,
		CoverImage:       set.CoverImage,
		Content:          set.Content,
		Tags:             set.Tags,
		ParentID:         set.ParentID,
		IsExpanded:       set.IsExpanded,
		CreatedTimestamp: now.UnixMilli(),
		UpdatedTimestamp: now.UnixMilli(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if page.Title == "" {
		page.Title = "Untitled"
	}
	if err := d.db.WithContext(d.ctx).Create(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

// PageUpdate applies a partial column update and refreshes the update timestamps
// PageUpdate 执行部分字段更新并刷新更新时间戳
func (d *Dao) PageUpdate(id string, uid int64, updates map[string]interface{}) (*model.Page, error) {
	now := timex.Now()
	updates["updated_timestamp"] = now.UnixMilli()
	updates["updated_at"] = now

	tx := d.db.WithContext(d.ctx).Model(&model.Page{}).
		Where("id = ? AND uid = ? AND is_deleted = 0", id, uid).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return d.PageGetByID(id, uid)
}

// PageSoftDelete marks the page deleted; deleting an absent id is not an error
// PageSoftDelete 软删除页面；删除不存在的ID不算错误
func (d *Dao) PageSoftDelete(id string, uid int64) (bool, error) {
	now := timex.Now()
	tx := d.db.WithContext(d.ctx).Model(&model.Page{}).
		Where("id = ? AND uid = ? AND is_deleted = 0", id, uid).
		Updates(map[string]interface{}{
			"is_deleted":        1,
			"deleted_timestamp": now.UnixMilli(),
			"updated_timestamp": now.UnixMilli(),
			"updated_at":        now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// PagePurgeDeletedBefore removes soft-deleted rows older than the cutoff
// PagePurgeDeletedBefore 清除早于截止时间戳的软删除行
func (d *Dao) PagePurgeDeletedBefore(cutoffMilli int64) (int64, error) {
	tx := d.db.WithContext(d.ctx).
		Where("is_deleted = 1 AND deleted_timestamp < ?", cutoffMilli).
		Delete(&model.Page{})
	return tx.RowsAffected, tx.Error
}
