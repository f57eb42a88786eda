// Package usecase はinvestmentsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"

	"investhorizon_backend/internal/feature/investments/domain/entity"
)

// InvestmentRepository は投資レコードの読み取りを抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type InvestmentRepository interface {
	// ListByUser はユーザーの投資レコードをid順に返します。
	// 存在しないユーザーの場合はエラーではなく空の結果を返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Investment, error)
}

// InvestmentUsecase は投資レコードの読み取り専用クエリを提供します。
type InvestmentUsecase struct {
	repo InvestmentRepository
}

// NewInvestmentUsecase は指定されたリポジトリで新しいInvestmentUsecaseを生成します。
func NewInvestmentUsecase(r InvestmentRepository) *InvestmentUsecase {
	return &InvestmentUsecase{repo: r}
}

// ListByUser はuserIDが所有する投資レコードを返します。成功時の結果はnilになりません。
func (u *InvestmentUsecase) ListByUser(ctx context.Context, userID uint) ([]entity.Investment, error) {
	investments, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if investments == nil {
		investments = []entity.Investment{}
	}
	return investments, nil
}
