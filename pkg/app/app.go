package app

import (
	"github.com/astralvault/page-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

// Res is the unified response structure: Code/Status/Msg/Data
// Optional fields use omitempty (will not be serialized if nil)
// Res 是统一的响应结构：Code/Status/Msg/Data
// 可选字段使用 omitempty（nil 则不会被序列化）
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// ToResponse writes the unified JSON envelope for the given code
// ToResponse 以统一 JSON 结构输出指定业务码
func (r *Response) ToResponse(c *code.Code) {
	res := Res{
		Code:    c.Code(),
		Status:  c.Status(),
		Message: c.Msg(),
	}
	if c.HaveData() {
		res.Data = c.Data()
	}
	if c.HaveDetails() {
		res.Details = c.Details()
	}
	r.Ctx.JSON(c.StatusCode(), res)
}

// GetUID reads the authenticated user id set by the auth middleware
// GetUID 读取鉴权中间件写入的用户ID
func GetUID(c *gin.Context) int64 {
	if v, ok := c.Get("user_token"); ok {
		if user, ok := v.(*UserEntity); ok {
			return user.UID
		}
	}
	return 0
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}
