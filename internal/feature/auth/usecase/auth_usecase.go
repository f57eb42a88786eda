package usecase

import (
	"context"
	"errors"
	"fmt"

	"investhorizon_backend/internal/feature/auth/domain/entity"
)

// dummyPasswordHash は未登録のメールアドレスでログインされた場合の照合に使います。
// パスワード不一致と同じbcryptの計算量になります。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// maxPasswordBytes はbcryptが入力として受け付ける最大バイト数です。
const maxPasswordBytes = 72

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// FindByEmail はメールアドレスが一致するユーザーを返します。存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create はユーザーを追加し、IDを設定します。
	// ストアがメールアドレスの重複を拒否した場合はErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error
}

// PasswordHasher はパスワードのハッシュ化と照合を行います。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// authUsecase はユーザーストアに対するサインアップとログインを実装します。
type authUsecase struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewAuthUsecase は新しいauthUsecaseを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher) *authUsecase {
	return &authUsecase{
		users:  users,
		hasher: hasher,
	}
}

// Signup はパスワードをハッシュ化して新しいユーザーを登録します。
//
// 事前のメールアドレス検索は通常ケースの早期判定にすぎません。
// 同じメールアドレスの同時サインアップは両方とも検索を通過し得るため、
// ストアの一意制約で勝者を決め、敗者にもErrEmailAlreadyExistsを返します。
func (u *authUsecase) Signup(ctx context.Context, username, email, password string) (*entity.User, error) {
	// 文字数ではなくバイト数で判定する
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailAlreadyExists
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("%w: find user by email: %w", ErrStore, err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Username: username, Email: email, PasswordHash: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("%w: create user: %w", ErrStore, err)
	}
	return user, nil
}

// Login はメールアドレスとパスワードでユーザーを認証します。
// 未登録のメールアドレスとパスワード不一致はどちらもErrInvalidCredentialsを返します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("%w: find user by email: %w", ErrStore, err)
	}

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.PasswordHash
	}

	// どちらの失敗経路でも必ず照合を行う
	match := u.hasher.Verify(password, passwordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
