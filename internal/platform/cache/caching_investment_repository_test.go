package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"investhorizon_backend/internal/feature/investments/domain/entity"
)

// mockInvestmentRepository はテスト用のInvestmentRepositoryモック実装です。
type mockInvestmentRepository struct {
	listByUserFn func(ctx context.Context, userID uint) ([]entity.Investment, error)
}

// ListByUser はモックのListByUser関数を呼び出します。
func (m *mockInvestmentRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Investment, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

// TestNewCachingInvestmentRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingInvestmentRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			ttl:               0,
			namespace:         "",
			expectedTTL:       30 * time.Second,
			expectedNamespace: "investments",
		},
		{
			name:              "negative ttl uses default",
			ttl:               -1 * time.Minute,
			namespace:         "",
			expectedTTL:       30 * time.Second,
			expectedNamespace: "investments",
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingInvestmentRepository(nil, tt.ttl, &mockInvestmentRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingInvestmentRepository_ListByUser_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingInvestmentRepository_ListByUser_NilRedis(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mockInvestmentRepository{
		listByUserFn: func(ctx context.Context, userID uint) ([]entity.Investment, error) {
			calls++
			return []entity.Investment{{"id": 1, "asset": "AAPL"}}, nil
		},
	}

	repo := NewCachingInvestmentRepository(nil, time.Minute, inner, "investments")

	for i := 0; i < 2; i++ {
		got, err := repo.ListByUser(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 investment, got %d", len(got))
		}
	}
	if calls != 2 {
		t.Errorf("expected inner to be called on every request, got %d calls", calls)
	}
}

// TestCachingInvestmentRepository_ListByUser_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingInvestmentRepository_ListByUser_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("investments:5").SetVal(`[{"id":12,"user_id":5,"asset":"AAPL","amount":1500.25}]`)

	innerCalled := false
	inner := &mockInvestmentRepository{
		listByUserFn: func(ctx context.Context, userID uint) ([]entity.Investment, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingInvestmentRepository(rdb, time.Minute, inner, "investments")
	got, err := repo.ListByUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 investment, got %d", len(got))
	}
	if got[0]["amount"] != json.Number("1500.25") {
		t.Errorf("expected amount to keep its textual form, got %#v", got[0]["amount"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingInvestmentRepository_ListByUser_CachedEmptyList は空配列のキャッシュが空スライスとして返ることを検証します。
func TestCachingInvestmentRepository_ListByUser_CachedEmptyList(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("investments:9").SetVal(`[]`)

	repo := NewCachingInvestmentRepository(rdb, time.Minute, &mockInvestmentRepository{}, "investments")
	got, err := repo.ListByUser(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

// TestCachingInvestmentRepository_ListByUser_CacheMiss はキャッシュミス時にDBから取得しキャッシュに保存することを検証します。
func TestCachingInvestmentRepository_ListByUser_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	rows := []entity.Investment{{"id": int64(3), "user_id": int64(5), "asset": "MSFT"}}
	rowsJSON, _ := json.Marshal(rows)

	mock.ExpectGet("investments:5").RedisNil()
	mock.ExpectSet("investments:5", rowsJSON, time.Minute).SetVal("OK")

	inner := &mockInvestmentRepository{
		listByUserFn: func(ctx context.Context, userID uint) ([]entity.Investment, error) {
			return rows, nil
		},
	}

	repo := NewCachingInvestmentRepository(rdb, time.Minute, inner, "investments")
	got, err := repo.ListByUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 investment, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingInvestmentRepository_ListByUser_SetFailureIgnored はキャッシュ保存の失敗が結果に影響しないことを検証します。
func TestCachingInvestmentRepository_ListByUser_SetFailureIgnored(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	rows := []entity.Investment{}
	rowsJSON, _ := json.Marshal(rows)

	mock.ExpectGet("investments:2").RedisNil()
	mock.ExpectSet("investments:2", rowsJSON, time.Minute).SetErr(errors.New("READONLY"))

	inner := &mockInvestmentRepository{
		listByUserFn: func(ctx context.Context, userID uint) ([]entity.Investment, error) {
			return rows, nil
		},
	}

	repo := NewCachingInvestmentRepository(rdb, time.Minute, inner, "investments")
	got, err := repo.ListByUser(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Error("expected empty non-nil slice")
	}
}

// TestCachingInvestmentRepository_ListByUser_InnerError は内部リポジトリのエラーが伝播され、キャッシュされないことを検証します。
func TestCachingInvestmentRepository_ListByUser_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("database error")

	mock.ExpectGet("investments:1").RedisNil()

	inner := &mockInvestmentRepository{
		listByUserFn: func(ctx context.Context, userID uint) ([]entity.Investment, error) {
			return nil, expectedErr
		},
	}

	repo := NewCachingInvestmentRepository(rdb, time.Minute, inner, "investments")
	_, err := repo.ListByUser(context.Background(), 1)

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingInvestmentRepository_ListByUser_CorruptedCache は破損したキャッシュを削除しDBにフォールバックすることを検証します。
func TestCachingInvestmentRepository_ListByUser_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	rows := []entity.Investment{{"id": int64(1), "asset": "AAPL"}}
	rowsJSON, _ := json.Marshal(rows)

	mock.ExpectGet("investments:4").SetVal("invalid json")
	mock.ExpectDel("investments:4").SetVal(1)
	mock.ExpectSet("investments:4", rowsJSON, time.Minute).SetVal("OK")

	inner := &mockInvestmentRepository{
		listByUserFn: func(ctx context.Context, userID uint) ([]entity.Investment, error) {
			return rows, nil
		},
	}

	repo := NewCachingInvestmentRepository(rdb, time.Minute, inner, "investments")
	got, err := repo.ListByUser(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 investment, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingInvestmentRepository_ListByUser_RedisDown はRedis障害時もDBから結果を返すことを検証します。
func TestCachingInvestmentRepository_ListByUser_RedisDown(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	rows := []entity.Investment{{"id": int64(8)}}
	rowsJSON, _ := json.Marshal(rows)

	mock.ExpectGet("investments:8").SetErr(errors.New("connection refused"))
	mock.ExpectSet("investments:8", rowsJSON, time.Minute).SetErr(errors.New("connection refused"))

	inner := &mockInvestmentRepository{
		listByUserFn: func(ctx context.Context, userID uint) ([]entity.Investment, error) {
			return rows, nil
		},
	}

	repo := NewCachingInvestmentRepository(rdb, time.Minute, inner, "investments")
	got, err := repo.ListByUser(context.Background(), 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 investment, got %d", len(got))
	}
}

// TestCachingInvestmentRepository_CacheKey はキーが namespace:userID 形式であることを検証します。
func TestCachingInvestmentRepository_CacheKey(t *testing.T) {
	t.Parallel()

	repo := NewCachingInvestmentRepository(nil, 0, &mockInvestmentRepository{}, "")
	if got := repo.cacheKey(42); got != "investments:42" {
		t.Errorf("cacheKey(42) = %q, expected %q", got, "investments:42")
	}
}
