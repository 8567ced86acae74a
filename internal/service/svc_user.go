package service

import (
	"github.com/astralvault/page-sync-service/internal/model"
	"github.com/astralvault/page-sync-service/pkg/code"
	"github.com/astralvault/page-sync-service/pkg/convert"
	"github.com/astralvault/page-sync-service/pkg/timex"
	"github.com/astralvault/page-sync-service/pkg/util"
)

// User 用户对外数据
type User struct {
	UID       int64      `json:"uid"`
	Email     string     `json:"email"`
	Nickname  string     `json:"nickname"`
	Avatar    string     `json:"avatar"`
	IsPremium bool       `json:"isPremium"`
	Token     string     `json:"token,omitempty"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

type UserRegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Nickname string `json:"nickname" form:"nickname" binding:"required"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type UserLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UserUpdateRequest struct {
	Nickname *string `json:"nickname" form:"nickname"`
	Avatar   *string `json:"avatar" form:"avatar"`
}

func userToDTO(m *model.User) *User {
	return convert.StructAssign(m, &User{}).(*User)
}

// UserRegister 用户注册，同邮箱并发注册通过 singleflight 合并
func (svc *Service) UserRegister(param *UserRegisterRequest) (*User, error) {

	result, err, _ := svc.SF.Do("user-register-"+param.Email, func() (interface{}, error) {
		exist, err := svc.dao.UserGetByEmail(param.Email)
		if err != nil {
			return nil, code.ErrorUserRegisterFailed.WithDetails(err.Error())
		}
		if exist != nil {
			return nil, code.ErrorUserEmailExists
		}

		hash, err := util.GeneratePasswordHash(param.Password)
		if err != nil {
			return nil, code.ErrorUserRegisterFailed.WithDetails(err.Error())
		}
		return svc.dao.UserCreate(param.Email, param.Nickname, hash)
	})
	if err != nil {
		return nil, err
	}
	user := result.(*model.User)

	dto := userToDTO(user)
	if svc.tokens != nil {
		token, err := svc.tokens.Generate(user.UID, user.Email, user.Nickname)
		if err != nil {
			return nil, code.ErrorUserRegisterFailed.WithDetails(err.Error())
		}
		dto.Token = token
	}
	return dto, nil
}

// UserLogin 用户登录，校验密码并签发令牌
func (svc *Service) UserLogin(param *UserLoginRequest) (*User, error) {

	user, err := svc.dao.UserGetByEmail(param.Email)
	if err != nil {
		return nil, code.ErrorUserLoginFailed.WithDetails(err.Error())
	}
	if user == nil || !util.CheckPasswordHash(user.Password, param.Password) {
		return nil, code.ErrorUserLoginFailed
	}

	dto := userToDTO(user)
	if svc.tokens != nil {
		token, err := svc.tokens.Generate(user.UID, user.Email, user.Nickname)
		if err != nil {
			return nil, code.ErrorUserLoginFailed.WithDetails(err.Error())
		}
		dto.Token = token
	}
	return dto, nil
}

// UserProfile 获取用户资料
func (svc *Service) UserProfile(uid int64) (*User, error) {
	user, err := svc.dao.UserGetByUID(uid)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if user == nil {
		return nil, code.ErrorUserNotExist
	}
	return userToDTO(user), nil
}

// UserUpdate 更新用户资料（部分字段）
func (svc *Service) UserUpdate(uid int64, param *UserUpdateRequest) (*User, error) {

	updates := map[string]interface{}{}
	if param.Nickname != nil {
		updates["nickname"] = *param.Nickname
	}
	if param.Avatar != nil {
		updates["avatar"] = *param.Avatar
	}
	if len(updates) == 0 {
		return svc.UserProfile(uid)
	}

	user, err := svc.dao.UserUpdate(uid, updates)
	if err != nil {
		return nil, code.ErrorUserUpdateFailed.WithDetails(err.Error())
	}
	if user == nil {
		return nil, code.ErrorUserNotExist
	}
	return userToDTO(user), nil
}
