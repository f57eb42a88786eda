// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"investhorizon_backend/internal/feature/auth/domain/entity"
	"investhorizon_backend/internal/feature/auth/usecase"
)

const (
	// mysqlDuplicateEntry はMySQLのユニークキー重複エラー番号です。
	mysqlDuplicateEntry = 1062
	// pgUniqueViolation はPostgreSQLのunique_violationのSQLSTATEです。
	pgUniqueViolation = "23505"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// MySQLとPostgreSQLのどちらの接続でも動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// メールアドレスの一意性はusersテーブルのユニーク制約で保証します。
// 制約違反の場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します（保存されている値と完全一致）。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	// Takeは未検出時にgormのロガーへrecord not foundを出力するため、Findで件数を確認する
	res := r.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&u)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, usecase.ErrUserNotFound
	}
	return &u, nil
}

// isUniqueViolation はドライバーごとのユニーク制約違反を判定します。
func isUniqueViolation(err error) bool {
	// TranslateErrorが有効な場合
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return false
}
