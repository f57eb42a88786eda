package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"investhorizon_backend/internal/feature/auth/transport/ws/dto"
)

const (
	// maxMessageSize は受信フレームの上限サイズです。
	maxMessageSize = 64 << 10
	// closeWriteWait はシャットダウン時のクローズフレーム送信の待ち時間です。
	closeWriteWait = time.Second
)

// MessageHandler は受信したテキストフレームを1件処理します。
// nilを返した場合は何も送信しません。
type MessageHandler interface {
	Handle(ctx context.Context, raw []byte) *dto.SessionResponse
}

// Gateway は認証用のWebSocket接続を受け付け、フレームをMessageHandlerに渡します。
// 1つの接続上のフレームは到着順に1件ずつ処理します。
type Gateway struct {
	handler  MessageHandler
	allowed  map[string]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[string]*websocket.Conn // connID -> conn
}

// NewGateway は新しいGatewayを生成します。allowedOriginsが空の場合はすべてのOriginを許可します。
func NewGateway(handler MessageHandler, allowedOrigins []string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &Gateway{
		handler: handler,
		allowed: allowed,
		// Originはアップグレード前にAdmitで検査する
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
		conns:    make(map[string]*websocket.Conn),
	}
}

// Admit は指定されたOriginヘッダーの接続を受け付けるかを返します。
// ブラウザ以外のクライアントのため、Originがない場合は許可します。
func (g *Gateway) Admit(origin string) bool {
	if origin == "" || len(g.allowed) == 0 {
		return true
	}
	_, ok := g.allowed[origin]
	return ok
}

// Serve はリクエストをアップグレードし、接続が閉じるまで読み取りループを実行します。
func (g *Gateway) Serve(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if !g.Admit(origin) {
		g.logger.Warn("websocket connection rejected", "origin", origin, "remote_addr", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusForbidden, dto.Error("Forbidden"))
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgradeが既にHTTPエラーレスポンスを書き込んでいる
		g.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", c.ClientIP())
		return
	}

	connID := uuid.NewString()
	log := g.logger.With("conn_id", connID, "remote_addr", c.ClientIP())
	g.register(connID, conn)
	log.Info("websocket connection opened", "origin", origin)

	defer func() {
		g.unregister(connID)
		log.Info("websocket connection closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	ctx := c.Request.Context()
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		resp := g.process(ctx, log, msg)
		if resp == nil {
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// process はフレームを1件処理します。
// panicは内部エラーとして応答し、接続と他のセッションは継続します。
func (g *Gateway) process(ctx context.Context, log *slog.Logger, msg []byte) (resp *dto.SessionResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing websocket message", "panic", r)
			resp = dto.Error(MsgInternalError)
		}
	}()
	return g.handler.Handle(ctx, msg)
}

// ActiveConnections は開いている接続数を返します。
func (g *Gateway) ActiveConnections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}

// Close はすべての接続にgoing-awayのクローズフレームを送信して閉じます。
// http.Server.Shutdownはハイジャック済みの接続を追跡しないため、あわせて呼び出します。
func (g *Gateway) Close() {
	g.mu.Lock()
	conns := g.conns
	g.conns = make(map[string]*websocket.Conn)
	g.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		_ = conn.Close()
	}
}

func (g *Gateway) register(connID string, conn *websocket.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[connID] = conn
}

func (g *Gateway) unregister(connID string) {
	g.mu.Lock()
	conn, ok := g.conns[connID]
	delete(g.conns, connID)
	g.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}
