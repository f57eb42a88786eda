// Package handler はinvestmentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"investhorizon_backend/internal/feature/investments/domain/entity"
	"investhorizon_backend/internal/feature/investments/transport/http/dto"
)

// InvestmentUsecase は投資レコード照会のユースケースです。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type InvestmentUsecase interface {
	ListByUser(ctx context.Context, userID uint) ([]entity.Investment, error)
}

// InvestmentHandler は投資レコードに関するHTTPリクエストを処理します。
type InvestmentHandler struct {
	uc     InvestmentUsecase
	logger *slog.Logger
}

// NewInvestmentHandler は新しい InvestmentHandler を作成します。
// loggerがnilの場合はslog.Default()を使用します。
func NewInvestmentHandler(uc InvestmentUsecase, logger *slog.Logger) *InvestmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvestmentHandler{uc: uc, logger: logger}
}

// ListByUser は GET /investments/:userId を処理します。
// - userIdが数値でない場合は400を返却
// - ストアのエラー時は500と固定メッセージを返却（詳細はログのみ）
// - 成功時は投資レコードの配列（0件なら空配列）を返却
func (h *InvestmentHandler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Status: "error", Message: "Invalid user id"})
		return
	}

	investments, err := h.uc.ListByUser(c.Request.Context(), uint(userID))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "failed to list investments", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Status: "error", Message: "Database error"})
		return
	}
	if investments == nil {
		investments = []entity.Investment{}
	}
	c.JSON(http.StatusOK, dto.InvestmentsResponse{Status: "success", Investments: investments})
}
