// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

// User は登録済みのアカウントを表します。
// レコードはサインアップ時に作成され、以降は読み取りのみです。
type User struct {
	// ID はストアが採番し、変更されません。
	ID uint `gorm:"primaryKey"`

	// Username は表示名です。一意である必要はありません。
	Username string `gorm:"size:255;not null"`

	// Email はログインに使う識別子で、保存された値と完全一致で照合します。
	// 一意性はアプリケーションではなくストアの制約で保証します。
	// MySQLでは大文字小文字を区別するよう、マイグレーション時にバイナリ照合順序でテーブルを作成します。
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash はソルトとコストを含むbcryptハッシュです。
	// 平文のパスワードは保存しません。
	PasswordHash string `gorm:"column:password_hash;size:255;not null"`
}

// TableName はGORMで使用するテーブル名を返します。
func (User) TableName() string {
	return "users"
}
