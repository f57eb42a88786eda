// Package adapters はinvestmentsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"

	"investhorizon_backend/internal/feature/investments/domain/entity"
	"investhorizon_backend/internal/feature/investments/usecase"
)

// investmentsTable は外部で管理されるテーブル名です。
const investmentsTable = "investments"

// investmentGorm はInvestmentRepositoryインターフェースのGORM実装です。
type investmentGorm struct {
	db *gorm.DB
}

var _ usecase.InvestmentRepository = (*investmentGorm)(nil)

// NewInvestmentGorm は指定されたDB接続でinvestmentGormの新しいインスタンスを生成します。
func NewInvestmentGorm(db *gorm.DB) *investmentGorm {
	return &investmentGorm{db: db}
}

// ListByUser はuser_idが一致する投資レコードをid順に返します。
// 列はテーブルにあるものをそのまま返します。
func (r *investmentGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Investment, error) {
	// GORMはmap型の名前付きスライスを扱えないため、一度[]map[string]anyで受け取ります
	var rows []map[string]any
	if err := r.db.WithContext(ctx).
		Table(investmentsTable).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Investment, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Investment(row))
	}
	return out, nil
}
