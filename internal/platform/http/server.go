package http

import (
	"net/http"
	"time"
)

// NewServer はリスナー用に設定されたHTTPサーバーを作成します。
//
// 設定:
//   - ReadHeaderTimeout: ヘッダー受信の最大時間（Slowloris対策）
//   - IdleTimeout: keep-alive接続の維持期間
//
// 注意:
//   - WebSocketはハイジャック後にこれらのタイムアウトの対象外となる
//   - ReadTimeout/WriteTimeoutは長寿命のWebSocket接続を切断するため設定しない
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}
