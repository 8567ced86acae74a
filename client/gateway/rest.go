package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/astralvault/page-sync-service/client/entity"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// envelope 服务端统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RESTGateway is the request/response backend without a push channel
// RESTGateway 是无推送通道的请求/响应后端
// SubscribeToChanges 返回 no-op 取消函数，存储只能依赖乐观更新与整体重新拉取
type RESTGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTGateway 创建 REST 网关，baseURL 形如 http://127.0.0.1:9000
func NewRESTGateway(baseURL string, token string) *RESTGateway {
	return &RESTGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken 更新认证令牌
func (g *RESTGateway) SetToken(token string) {
	g.token = token
}

// do 发送请求并解包统一响应结构
func (g *RESTGateway) do(ctx context.Context, method, path string, payload any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		buf, err := sonic.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	env := &envelope{}
	if err := sonic.Unmarshal(raw, env); err != nil {
		return nil, errors.Wrapf(err, "decode response (http %d)", resp.StatusCode)
	}

	if !env.Status {
		return nil, fmt.Errorf("server code %d: %s", env.Code, env.Message)
	}
	return env, nil
}

// FetchAll 拉取用户的全部页面
func (g *RESTGateway) FetchAll(ctx context.Context, ownerID int64) ([]*entity.Page, error) {
	env, err := g.do(ctx, http.MethodGet, "/api/pages", nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	var pages []*entity.Page
	if len(env.Data) > 0 {
		if err := sonic.Unmarshal(env.Data, &pages); err != nil {
			return nil, &FetchError{Err: errors.Wrap(err, "decode pages")}
		}
	}
	return pages, nil
}

// Create 创建页面
func (g *RESTGateway) Create(ctx context.Context, ownerID int64, draft *entity.PageDraft) (*entity.Page, error) {
	env, err := g.do(ctx, http.MethodPost, "/api/pages", draft)
	if err != nil {
		return nil, &CreateError{Err: err}
	}

	page := &entity.Page{}
	if err := sonic.Unmarshal(env.Data, page); err != nil {
		return nil, &CreateError{Err: errors.Wrap(err, "decode page")}
	}
	return page, nil
}

// Update 部分字段更新
func (g *RESTGateway) Update(ctx context.Context, id string, updates *entity.PageUpdate) (*entity.Page, error) {
	env, err := g.do(ctx, http.MethodPut, "/api/pages/"+id, updates)
	if err != nil {
		return nil, &UpdateError{ID: id, Err: err}
	}

	page := &entity.Page{}
	if err := sonic.Unmarshal(env.Data, page); err != nil {
		return nil, &UpdateError{ID: id, Err: errors.Wrap(err, "decode page")}
	}
	return page, nil
}

// Delete 删除页面，服务端对不存在的ID返回成功（无更新）
func (g *RESTGateway) Delete(ctx context.Context, id string) error {
	if _, err := g.do(ctx, http.MethodDelete, "/api/pages/"+id, nil); err != nil {
		return &DeleteError{ID: id, Err: err}
	}
	return nil
}

// SubscribeToChanges REST 后端没有推送通道，回调永不触发
func (g *RESTGateway) SubscribeToChanges(ctx context.Context, handlers ChangeHandlers) (UnsubscribeFunc, error) {
	return func() {}, nil
}

// Login 登录并返回带令牌的用户，同时把令牌装入网关
func (g *RESTGateway) Login(ctx context.Context, email, password string) (*entity.User, error) {
	env, err := g.do(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	user := &entity.User{}
	if err := sonic.Unmarshal(env.Data, user); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	g.token = user.Token
	return user, nil
}

// Register 注册新用户并返回带令牌的用户
func (g *RESTGateway) Register(ctx context.Context, email, nickname, password string) (*entity.User, error) {
	env, err := g.do(ctx, http.MethodPost, "/api/user/register", map[string]string{
		"email":    email,
		"nickname": nickname,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	user := &entity.User{}
	if err := sonic.Unmarshal(env.Data, user); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	g.token = user.Token
	return user, nil
}
