package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options selects the dialector and its connection target.
type Options struct {
	Driver   string
	Path     string
	URL      string
	LogLevel logger.LogLevel
}

// Init 初始化数据库连接并执行自动迁移。
func Init(opts Options) error {
	gdb, err := Open(opts)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open connects to sqlite (default) or postgres without migrating.
func Open(opts Options) (*gorm.DB, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	config := &gorm.Config{Logger: logger.Default.LogMode(level)}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "yanc-cms.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		gdb, err := gorm.Open(sqlite.Open(path), config)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return gdb, nil
	case "postgres":
		gdb, err := gorm.Open(postgres.Open(opts.URL), config)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&MediaItem{},
		&HeroContent{},
		&Event{},
		&Program{},
		&MentorTalk{},
		&TeamMember{},
		&Testimonial{},
		&Section{},
	}
}

// Migrate 自动迁移模式，为核心模型创建表
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
