package code

import (
	"fmt"
	"net/http"
)

type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}

// NewError registers an error code, panics on duplicates
// NewError 注册错误码，重复时 panic
func NewError(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, Lang: l}
}

// NewSuss registers a success code
// NewSuss 注册成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本
func (e *Code) Clone() *Code {
	return &Code{
		code:   e.code,
		status: e.status,
		Lang:   e.Lang,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

// WithData returns a copy carrying the response payload
// WithData 返回携带响应数据的副本
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.data = data
	c.haveData = true
	return c
}

// WithDetails returns a copy carrying error details
// WithDetails 返回携带错误详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.details = details
	c.haveDetails = true
	return c
}

// StatusCode maps the business code to an HTTP status code
// StatusCode 将业务码映射为 HTTP 状态码
func (e *Code) StatusCode() int {
	switch e.code {
	case Success.Code(), SuccessNoUpdate.Code():
		return http.StatusOK
	case ErrorInvalidParams.Code():
		return http.StatusBadRequest
	case ErrorNotUserAuthToken.Code(), ErrorInvalidUserAuthToken.Code():
		return http.StatusUnauthorized
	case ErrorTooManyRequests.Code():
		return http.StatusTooManyRequests
	case ErrorPageNotFound.Code(), ErrorUserNotExist.Code():
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

var (
	Success         = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
	SuccessNoUpdate = NewSuss(201, lang{en: "Success, no update required", zh_cn: "成功，无需更新"})

	ErrorServerInternal       = NewError(10000, lang{en: "Server internal error", zh_cn: "服务内部错误"})
	ErrorInvalidParams        = NewError(10001, lang{en: "Invalid request parameters", zh_cn: "入参错误"})
	ErrorNotUserAuthToken     = NewError(10002, lang{en: "Missing user auth token", zh_cn: "缺少用户鉴权 Token"})
	ErrorInvalidUserAuthToken = NewError(10003, lang{en: "Invalid user auth token", zh_cn: "用户鉴权 Token 无效"})
	ErrorTooManyRequests      = NewError(10004, lang{en: "Too many requests", zh_cn: "请求过多"})

	ErrorUserRegisterFailed = NewError(20001, lang{en: "User registration failed", zh_cn: "用户注册失败"})
	ErrorUserLoginFailed    = NewError(20002, lang{en: "User login failed", zh_cn: "用户登录失败"})
	ErrorUserNotExist       = NewError(20003, lang{en: "User does not exist", zh_cn: "用户不存在"})
	ErrorUserEmailExists    = NewError(20004, lang{en: "Email already registered", zh_cn: "邮箱已注册"})
	ErrorUserUpdateFailed   = NewError(20005, lang{en: "User profile update failed", zh_cn: "用户资料更新失败"})
	ErrorUserRegisterClosed = NewError(20006, lang{en: "Registration is disabled", zh_cn: "注册功能已关闭"})

	ErrorPageListFailed   = NewError(30001, lang{en: "Page list fetch failed", zh_cn: "页面列表获取失败"})
	ErrorPageCreateFailed = NewError(30002, lang{en: "Page create failed", zh_cn: "页面创建失败"})
	ErrorPageUpdateFailed = NewError(30003, lang{en: "Page update failed", zh_cn: "页面更新失败"})
	ErrorPageDeleteFailed = NewError(30004, lang{en: "Page delete failed", zh_cn: "页面删除失败"})
	ErrorPageNotFound     = NewError(30005, lang{en: "Page not found", zh_cn: "页面不存在"})
)
