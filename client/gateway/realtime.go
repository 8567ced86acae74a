package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/astralvault/page-sync-service/client/entity"
	pkgapp "github.com/astralvault/page-sync-service/pkg/app"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

// RealtimeGateway is the push-capable backend: CRUD goes over REST, remote
// mutations arrive on a websocket feed
// RealtimeGateway 是具备推送能力的后端：CRUD 走 REST，远端变更经 websocket 推送
type RealtimeGateway struct {
	*RESTGateway
	logger *zap.Logger
}

// NewRealtimeGateway 创建实时网关
func NewRealtimeGateway(baseURL string, token string, logger *zap.Logger) *RealtimeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeGateway{
		RESTGateway: NewRESTGateway(baseURL, token),
		logger:      logger,
	}
}

// wsURL 由 REST 地址派生出推送通道地址
func (g *RealtimeGateway) wsURL() string {
	addr := g.baseURL
	addr = strings.Replace(addr, "https://", "wss://", 1)
	addr = strings.Replace(addr, "http://", "ws://", 1)
	return addr + "/api/ws?authorization=" + g.token
}

// feedHandler 接收推送帧并分发到回调
type feedHandler struct {
	gws.BuiltinEventHandler
	handlers ChangeHandlers
	logger   *zap.Logger
}

// feedEnvelope 推送帧内的统一响应结构
type feedEnvelope struct {
	Code   int             `json:"code"`
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (h *feedHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	data := message.Data.Bytes()
	buf := make([]byte, len(data))
	copy(buf, data)

	msg := pkgapp.DecodeWSFrame(buf)
	env := &feedEnvelope{}
	if err := sonic.Unmarshal(msg.Data, env); err != nil {
		h.logger.Warn("realtime feed decode failed", zap.String("action", msg.Action), zap.Error(err))
		return
	}
	if !env.Status {
		return
	}

	switch msg.Action {
	case "PageSyncCreate":
		page := &entity.Page{}
		if err := sonic.Unmarshal(env.Data, page); err != nil {
			h.logger.Warn("realtime feed decode page failed", zap.Error(err))
			return
		}
		if h.handlers.OnInsert != nil {
			h.handlers.OnInsert(page)
		}
	case "PageSyncModify":
		page := &entity.Page{}
		if err := sonic.Unmarshal(env.Data, page); err != nil {
			h.logger.Warn("realtime feed decode page failed", zap.Error(err))
			return
		}
		if h.handlers.OnUpdate != nil {
			h.handlers.OnUpdate(page)
		}
	case "PageSyncDelete":
		var payload struct {
			ID string `json:"id"`
		}
		if err := sonic.Unmarshal(env.Data, &payload); err != nil {
			h.logger.Warn("realtime feed decode delete failed", zap.Error(err))
			return
		}
		if h.handlers.OnDelete != nil {
			h.handlers.OnDelete(payload.ID)
		}
	}
}

// SubscribeToChanges 建立 websocket 订阅，返回幂等的取消函数
func (g *RealtimeGateway) SubscribeToChanges(ctx context.Context, handlers ChangeHandlers) (UnsubscribeFunc, error) {
	handler := &feedHandler{handlers: handlers, logger: g.logger}

	socket, _, err := gws.NewClient(handler, &gws.ClientOption{
		Addr: g.wsURL(),
	})
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	go socket.ReadLoop()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			socket.WriteClose(1000, []byte("unsubscribe"))
		})
	}
	return unsubscribe, nil
}
