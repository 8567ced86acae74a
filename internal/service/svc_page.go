package service

import (
	"github.com/astralvault/page-sync-service/internal/dao"
	"github.com/astralvault/page-sync-service/internal/model"
	"github.com/astralvault/page-sync-service/pkg/code"
	"github.com/astralvault/page-sync-service/pkg/util"

	"github.com/bytedance/sonic"
)

// Page 页面对外数据，时间戳为毫秒
type Page struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Icon       string   `json:"icon"`
	CoverImage string   `json:"coverImage"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	ParentID   string   `json:"parentId"`
	IsExpanded bool     `json:"isExpanded"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
}

type PageCreateRequest struct {
	Title      string   `json:"title" form:"title"`
	Icon       string   `json:"icon" form:"icon"`
	CoverImage string   `json:"coverImage" form:"coverImage"`
	Content    string   `json:"content" form:"content"`
	Tags       []string `json:"tags" form:"tags"`
	ParentID   string   `json:"parentId" form:"parentId"`
	IsExpanded bool     `json:"isExpanded" form:"isExpanded"`
}

// PageUpdateRequest 部分更新请求，nil 字段保持不变
type PageUpdateRequest struct {
	Title      *string   `json:"title" form:"title"`
	Icon       *string   `json:"icon" form:"icon"`
	CoverImage *string   `json:"coverImage" form:"coverImage"`
	Content    *string   `json:"content" form:"content"`
	Tags       *[]string `json:"tags" form:"tags"`
	ParentID   *string   `json:"parentId" form:"parentId"`
	IsExpanded *bool     `json:"isExpanded" form:"isExpanded"`
}

func pageToDTO(m *model.Page) *Page {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Page{
		ID:         m.ID,
		Title:      m.Title,
		Icon:       m.Icon,
		CoverImage: m.CoverImage,
		Content:    m.Content,
		Tags:       tags,
		ParentID:   m.ParentID,
		IsExpanded: m.IsExpanded,
		CreatedAt:  m.CreatedTimestamp,
		UpdatedAt:  m.UpdatedTimestamp,
	}
}

// PageList 获取用户全部页面
func (svc *Service) PageList(uid int64) ([]*Page, error) {
	pages, err := svc.dao.PageGetAllByUID(uid)
	if err != nil {
		return nil, code.ErrorPageListFailed.WithDetails(err.Error())
	}
	list := make([]*Page, 0, len(pages))
	for _, p := range pages {
		list = append(list, pageToDTO(p))
	}
	return list, nil
}

// PageGet 获取单个页面
func (svc *Service) PageGet(id string, uid int64) (*Page, error) {
	page, err := svc.dao.PageGetByID(id, uid)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if page == nil {
		return nil, code.ErrorPageNotFound
	}
	return pageToDTO(page), nil
}

// PageCreate 创建页面
func (svc *Service) PageCreate(uid int64, param *PageCreateRequest) (*Page, error) {
	page, err := svc.dao.PageCreate(&dao.PageSet{
		UID:        uid,
		Title:      param.Title,
		Icon:       param.Icon,
		CoverImage: param.CoverImage,
		Content:    param.Content,
		Tags:       util.RemoveDuplicate(param.Tags),
		ParentID:   param.ParentID,
		IsExpanded: param.IsExpanded,
	})
	if err != nil {
		return nil, code.ErrorPageCreateFailed.WithDetails(err.Error())
	}
	return pageToDTO(page), nil
}

// PageUpdate applies the non-nil fields of the request as a partial update
// PageUpdate 将请求中的非 nil 字段应用为部分更新
func (svc *Service) PageUpdate(id string, uid int64, param *PageUpdateRequest) (*Page, error) {

	updates := map[string]interface{}{}
	if param.Title != nil {
		updates["title"] = *param.Title
	}
	if param.Icon != nil {
		updates["icon"] = *param.Icon
	}
	if param.CoverImage != nil {
		updates["cover_image"] = *param.CoverImage
	}
	if param.Content != nil {
		updates["content"] = *param.Content
	}
	if param.Tags != nil {
		// map 更新不会经过字段序列化器，此处手动序列化
		buf, err := sonic.Marshal(util.RemoveDuplicate(*param.Tags))
		if err != nil {
			return nil, code.ErrorPageUpdateFailed.WithDetails(err.Error())
		}
		updates["tags"] = string(buf)
	}
	if param.ParentID != nil {
		updates["parent_id"] = *param.ParentID
	}
	if param.IsExpanded != nil {
		updates["is_expanded"] = *param.IsExpanded
	}

	if len(updates) == 0 {
		return svc.PageGet(id, uid)
	}

	page, err := svc.dao.PageUpdate(id, uid, updates)
	if err != nil {
		return nil, code.ErrorPageUpdateFailed.WithDetails(err.Error())
	}
	if page == nil {
		return nil, code.ErrorPageNotFound
	}
	return pageToDTO(page), nil
}

// PageDelete 软删除页面，删除不存在的ID不算错误
func (svc *Service) PageDelete(id string, uid int64) (bool, error) {
	deleted, err := svc.dao.PageSoftDelete(id, uid)
	if err != nil {
		return false, code.ErrorPageDeleteFailed.WithDetails(err.Error())
	}
	return deleted, nil
}

// PagePurgeDeleted 清理超过保留期的软删除页面
func (svc *Service) PagePurgeDeleted(cutoffMilli int64) (int64, error) {
	return svc.dao.PagePurgeDeletedBefore(cutoffMilli)
}
