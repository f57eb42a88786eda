// Package entity はinvestmentsフィーチャーのドメインモデルを定義します。
package entity

// Investment はinvestmentsテーブルの1行を列名をキーとして表します。
// テーブルのスキーマはこのサービスの外部で管理されるため、
// id・user_id以外の列は保存されている値をそのまま返します。
type Investment map[string]any
