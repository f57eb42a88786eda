package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authws "investhorizon_backend/internal/feature/auth/transport/ws"
	investmentshandler "investhorizon_backend/internal/feature/investments/transport/handler"
	"investhorizon_backend/internal/platform/http/handler"
)

// NewRouter はHTTPリスナー用のルーターを生成します。
func NewRouter(investments *investmentshandler.InvestmentHandler) *gin.Engine {
	r := gin.Default()

	// フロントエンドは別オリジンから呼び出すため全Originを許可
	r.Use(cors.Default())

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)

	// ユーザーの投資レコード一覧
	r.GET("/investments/:userId", investments.ListByUser)

	return r
}

// NewWebSocketRouter はWebSocketリスナー用のルーターを生成します。
// Origin検査はゲートウェイ側で行うため、CORSミドルウェアは適用しません。
func NewWebSocketRouter(gateway *authws.Gateway) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)

	// サインアップ・ログインのメッセージを受け付ける
	r.GET("/", gateway.Serve)

	return r
}
