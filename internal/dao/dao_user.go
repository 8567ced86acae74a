package dao

import (
	"errors"

	"github.com/astralvault/page-sync-service/internal/model"
	"github.com/astralvault/page-sync-service/pkg/timex"

	"gorm.io/gorm"
)

// UserGetByEmail 根据邮箱获取用户
func (d *Dao) UserGetByEmail(email string) (*model.User, error) {
	var user model.User
	err := d.db.WithContext(d.ctx).
		Where("email = ? AND is_deleted = 0", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UserGetByUID 根据用户ID获取用户
func (d *Dao) UserGetByUID(uid int64) (*model.User, error) {
	var user model.User
	err := d.db.WithContext(d.ctx).
		Where("uid = ? AND is_deleted = 0", uid).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UserCreate 创建用户
func (d *Dao) UserCreate(email, nickname, passwordHash string) (*model.User, error) {
	now := timex.Now()
	user := &model.User{
		Email:     email,
		Nickname:  nickname,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.db.WithContext(d.ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UserUpdate 执行用户资料的部分字段更新
func (d *Dao) UserUpdate(uid int64, updates map[string]interface{}) (*model.User, error) {
	updates["updated_at"] = timex.Now()
	tx := d.db.WithContext(d.ctx).Model(&model.User{}).
		Where("uid = ? AND is_deleted = 0", uid).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return d.UserGetByUID(uid)
}
