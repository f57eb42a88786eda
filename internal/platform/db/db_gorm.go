// Package db opens the relational store shared by all features.
package db

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"investhorizon_backend/internal/feature/auth/domain/entity"
)

// Supported values for Config.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// mysqlTableOptions はMySQLでusersテーブルを作成する際のオプションです。
// utf8mb4の既定の照合順序は大文字小文字を区別しないため、メールアドレスを
// 保存された値と完全一致で照合できるようバイナリ照合順序を指定します。
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// Config はデータベース接続設定を保持します。
type Config struct {
	Driver       string
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL (MySQL) のインスタンス接続名
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = DriverMySQL
	}
	return Config{
		Driver:       driver,
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// Validate は必須項目が揃っているか確認します。
func (c Config) Validate() error {
	if c.Driver != DriverMySQL && c.Driver != DriverPostgres {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
	if c.User == "" || c.Password == "" || c.Name == "" {
		return fmt.Errorf("database connection details are missing: DB_USER, DB_PASSWORD and DB_NAME are required")
	}
	if c.Host == "" && (c.Driver != DriverMySQL || c.InstanceName == "") {
		return fmt.Errorf("database connection details are missing: DB_HOST is required")
	}
	return nil
}

// BuildDSN はドライバーに応じたDSN文字列を生成します。
// MySQLではInstanceNameが設定されている場合、Cloud SQLのUnixソケット接続を優先します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverPostgres {
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, port, sslMode)
	}

	if cfg.InstanceName != "" {
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
	}
	port := cfg.Port
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Name)
}

// NewOpener はドライバーに対応するOpenerを返します。
// 一意制約違反をgorm.ErrDuplicatedKeyとして受け取れるようTranslateErrorを有効にします。
// gormのログはWarn以上のみ出力し、record not foundは出力しません。
func NewOpener(driver string) Opener {
	return func(dsn string) (*gorm.DB, error) {
		var dialector gorm.Dialector
		switch driver {
		case DriverPostgres:
			dialector = postgres.Open(dsn)
		default:
			dialector = gmysql.Open(dsn)
		}
		return gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         newGormLogger(os.Stdout),
		})
	}
}

// newGormLogger はgormのクエリログ用のロガーを生成します。
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate はusersテーブルを作成・更新します。
// investmentsテーブルのスキーマは外部で管理されるため対象外です。
func Migrate(db *gorm.DB, driver string) error {
	if opts := tableOptions(driver); opts != "" {
		db = db.Set("gorm:table_options", opts)
	}
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// tableOptions はドライバーごとのCREATE TABLEオプションを返します。
func tableOptions(driver string) string {
	if driver == DriverMySQL {
		return mysqlTableOptions
	}
	return ""
}

// ConnectWithRetry はtimeoutまでretryInterval間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定を検証して接続し、必要に応じてusersテーブルをマイグレーションします。
// マイグレーションしない場合、emailの照合順序は外部で管理されるスキーマに従います。
func Open(cfg Config, timeout time.Duration, runMigrations bool) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, NewOpener(cfg.Driver))
	if err != nil {
		return nil, err
	}

	if runMigrations {
		if err := Migrate(db, cfg.Driver); err != nil {
			return nil, err
		}
	}

	slog.Info("database connection established", "driver", cfg.Driver)
	return db, nil
}
