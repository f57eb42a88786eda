// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrUserNotFound はメールアドレスに一致するユーザーが存在しない場合にリポジトリが返すエラーです。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists はメールアドレスが登録済みの場合のエラーです。
	// 事前の検索で検出した場合も、ストアの一意制約で検出した場合も同じエラーになります。
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials はログイン時にメールアドレスが未登録、またはパスワードが一致しない場合のエラーです。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordTooLong はパスワードがbcryptで扱える72バイトを超える場合のエラーです。
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

	// ErrStore はストレージまたは通信の失敗をラップします。
	ErrStore = errors.New("store failure")
)
