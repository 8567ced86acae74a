package app

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/astralvault/page-sync-service/pkg/code"
)

const (
	WebSocketServerPingInterval = 25
	WebSocketServerPingWait     = 40
)

// WSMessage is one framed websocket message: "Action|{json payload}"
// WSMessage 是一条帧化的 websocket 消息："动作|{json 数据}"
type WSMessage struct {
	Action string // 操作类型，例如 "PageSync"
	Data   []byte // JSON 负载
}

// EncodeWSFrame builds the "action|json" wire frame
// EncodeWSFrame 构造 "action|json" 线上帧
func EncodeWSFrame(action string, payload any) ([]byte, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if action == "" {
		return body, nil
	}
	frame := make([]byte, 0, len(action)+1+len(body))
	frame = append(frame, action...)
	frame = append(frame, '|')
	frame = append(frame, body...)
	return frame, nil
}

// DecodeWSFrame splits the "action|json" wire frame
// DecodeWSFrame 拆解 "action|json" 线上帧
func DecodeWSFrame(raw []byte) *WSMessage {
	s := string(raw)
	idx := strings.Index(s, "|")
	if idx <= 0 {
		return &WSMessage{Action: "", Data: raw}
	}
	return &WSMessage{Action: s[:idx], Data: []byte(s[idx+1:])}
}

// WebsocketServerConfig websocket 服务配置
type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
}

// WebsocketClient 存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn   *gws.Conn
	done   chan struct{}
	server *WebsocketServer

	// User 连接对应的已鉴权用户
	User *UserEntity
	// SF 用于合并连接内的并发重复请求
	SF *singleflight.Group
}

// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				return
			}
		}
	}
}

// ToResponse 将业务码转换为 JSON 帧并发送给客户端
func (c *WebsocketClient) ToResponse(resCode *code.Code, action ...string) {
	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}
	res := Res{
		Code:    resCode.Code(),
		Status:  resCode.Status(),
		Message: resCode.Msg(),
	}
	if resCode.HaveData() {
		res.Data = resCode.Data()
	}
	if resCode.HaveDetails() {
		res.Details = strings.Join(resCode.Details(), ",")
	}
	frame, err := EncodeWSFrame(actionType, res)
	if err != nil {
		c.server.logger.Error("WebsocketServer encode frame err", zap.Error(err))
		return
	}
	_ = c.conn.WriteMessage(gws.OpcodeText, frame)
}

// BroadcastResponse 将业务码广播给同用户的全部连接
// excludeSelf 为 true 时不发给当前连接
func (c *WebsocketClient) BroadcastResponse(resCode *code.Code, excludeSelf bool, action string) {
	if c.User == nil {
		return
	}
	c.server.Broadcast(c.User.UID, resCode, action, c.excludedConn(excludeSelf))
}

func (c *WebsocketClient) excludedConn(excludeSelf bool) *gws.Conn {
	if excludeSelf {
		return c.conn
	}
	return nil
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer 管理全部 websocket 连接，按动作分发消息
type WebsocketServer struct {
	handlers map[string]func(*WebsocketClient, *WSMessage)

	mu          sync.Mutex
	clients     ConnStorage
	userClients map[int64]ConnStorage

	up     *gws.Upgrader
	config *WebsocketServerConfig
	logger *zap.Logger
}

func NewWebsocketServer(c WebsocketServerConfig, logger *zap.Logger) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	wss := &WebsocketServer{
		handlers:    make(map[string]func(*WebsocketClient, *WSMessage)),
		clients:     make(ConnStorage),
		userClients: make(map[int64]ConnStorage),
		config:      &c,
		logger:      logger,
	}
	wss.up = gws.NewUpgrader(wss, &c.GWSOption)
	return wss
}

// Use registers a handler for an action
// Use 为指定动作注册处理器
func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WSMessage)) {
	w.handlers[action] = handler
}

// AddClient 登记连接
func (w *WebsocketServer) AddClient(client *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[client.conn] = client
	if client.User != nil {
		if _, ok := w.userClients[client.User.UID]; !ok {
			w.userClients[client.User.UID] = make(ConnStorage)
		}
		w.userClients[client.User.UID][client.conn] = client
	}
}

// RemoveClient 注销连接
func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	client, ok := w.clients[conn]
	if !ok {
		return
	}
	close(client.done)
	delete(w.clients, conn)
	if client.User != nil {
		if conns, ok := w.userClients[client.User.UID]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(w.userClients, client.User.UID)
			}
		}
	}
}

// UserConnCount 返回用户当前连接数
func (w *WebsocketServer) UserConnCount(uid int64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.userClients[uid])
}

// Broadcast 将业务码帧广播给用户的全部连接，exclude 非 nil 时跳过该连接
func (w *WebsocketServer) Broadcast(uid int64, resCode *code.Code, action string, exclude *gws.Conn) {
	res := Res{
		Code:    resCode.Code(),
		Status:  resCode.Status(),
		Message: resCode.Msg(),
	}
	if resCode.HaveData() {
		res.Data = resCode.Data()
	}
	frame, err := EncodeWSFrame(action, res)
	if err != nil {
		w.logger.Error("WebsocketServer broadcast encode err", zap.Error(err))
		return
	}

	w.mu.Lock()
	conns := make([]*gws.Conn, 0, len(w.userClients[uid]))
	for conn := range w.userClients[uid] {
		if exclude != nil && conn == exclude {
			continue
		}
		conns = append(conns, conn)
	}
	w.mu.Unlock()

	if len(conns) == 0 {
		return
	}
	b := gws.NewBroadcaster(gws.OpcodeText, frame)
	defer b.Close()
	for _, conn := range conns {
		_ = b.Broadcast(conn)
	}
}

// Serve upgrades the request and starts the read loop for a pre-authenticated user
// Serve 为已鉴权用户升级请求并启动读取循环
func (w *WebsocketServer) Serve(user *UserEntity, writer http.ResponseWriter, request *http.Request) error {
	socket, err := w.up.Upgrade(writer, request)
	if err != nil {
		return err
	}
	client := &WebsocketClient{
		conn:   socket,
		done:   make(chan struct{}),
		server: w,
		User:   user,
		SF:     new(singleflight.Group),
	}
	w.AddClient(client)
	go client.PingLoop(w.config.PingInterval)
	go socket.ReadLoop()
	return nil
}

// OnOpen 实现 gws.Event
func (w *WebsocketServer) OnOpen(socket *gws.Conn) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

// OnClose 实现 gws.Event
func (w *WebsocketServer) OnClose(socket *gws.Conn, err error) {
	w.RemoveClient(socket)
}

// OnPing 实现 gws.Event
func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(payload)
}

// OnPong 实现 gws.Event
func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

// OnMessage 实现 gws.Event，按 "action|json" 帧分发
func (w *WebsocketServer) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))

	w.mu.Lock()
	client, ok := w.clients[socket]
	w.mu.Unlock()
	if !ok {
		return
	}

	msg := DecodeWSFrame(message.Bytes())
	if msg.Action == "" {
		return
	}
	handler, ok := w.handlers[msg.Action]
	if !ok {
		client.ToResponse(code.ErrorInvalidParams.WithDetails("unknown action "+msg.Action), msg.Action)
		return
	}
	handler(client, msg)
}
