package upgrade

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// defaultReferenceVersion 没有版本记录时的基准版本，全部升级脚本都会执行
const defaultReferenceVersion = "v0.0.0"

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, db *gorm.DB) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db         *gorm.DB
	logger     *zap.Logger
	version    string
	stateFile  string
	migrations []Migration
}

// NewMigrationManager 创建升级管理器
// version 为当前运行版本，stateFile 记录上一次运行的版本，为空时不记录
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, version, stateFile string) *MigrationManager {
	return &MigrationManager{
		db:        db,
		logger:    logger,
		version:   version,
		stateFile: stateFile,
		migrations: []Migration{
			// 在这里注册所有的升级脚本，按版本从低到高
			&InitialSchemaMigrate{},
			&RevisionStateMigrate{},
		},
	}
}

// Migrations 返回已注册的升级脚本
func (m *MigrationManager) Migrations() []Migration {
	return m.migrations
}

// Run 执行升级
func (m *MigrationManager) Run(ctx context.Context) (int, error) {
	m.logger.Info("migration started")

	// 确保 schema_version 表存在
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	appliedVersions, err := m.AppliedVersions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied versions: %w", err)
	}

	lastVersion := canonical(m.getReferenceVersion())
	if !semver.IsValid(lastVersion) {
		m.logger.Warn("reference version is not a valid semver", zap.String("lastVersion", lastVersion))
		lastVersion = defaultReferenceVersion
	}

	// 当前版本不高于上一次运行的版本时无需升级
	runningVersion := canonical(m.version)
	if semver.IsValid(runningVersion) && semver.Compare(runningVersion, lastVersion) <= 0 && len(appliedVersions) > 0 {
		m.logger.Info("skipping upgrade", zap.String("runningVersion", runningVersion), zap.String("lastVersion", lastVersion))
		return 0, nil
	}

	executed := 0
	for _, migration := range m.migrations {
		scriptVersion := canonical(migration.Version())

		if appliedVersions[scriptVersion] {
			continue
		}
		if semver.IsValid(runningVersion) && semver.Compare(scriptVersion, runningVersion) > 0 {
			m.logger.Info("skip migration newer than running version",
				zap.String("scriptVersion", scriptVersion),
				zap.String("runningVersion", runningVersion))
			continue
		}

		m.logger.Info("applying migration",
			zap.String("scriptVersion", scriptVersion),
			zap.String("desc", migration.Description()))

		// 在事务中执行升级
		if err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			record := &SchemaVersion{
				Version:     scriptVersion,
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to record version: %w", err)
			}
			return nil
		}); err != nil {
			return executed, fmt.Errorf("failed to apply migration %s: %w", scriptVersion, err)
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", scriptVersion))
		executed++
	}

	if executed == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}

	if err := m.saveReferenceVersion(runningVersion); err != nil {
		// 记录错误但不阻断启动
		m.logger.Error("save lastVersion failed", zap.Error(err))
	}

	return executed, nil
}

// AppliedVersions 获取已应用的数据库版本
func (m *MigrationManager) AppliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[canonical(v.Version)] = true
	}
	return applied, nil
}

// getReferenceVersion 读取上一次运行的版本号，文件不存在或为空时返回 v0.0.0
func (m *MigrationManager) getReferenceVersion() string {
	if m.stateFile == "" {
		return defaultReferenceVersion
	}
	content, err := os.ReadFile(m.stateFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("read lastVersion failed", zap.String("file", m.stateFile), zap.Error(err))
		}
		return defaultReferenceVersion
	}

	ver := strings.TrimSpace(string(content))
	if ver == "" {
		return defaultReferenceVersion
	}
	return ver
}

// saveReferenceVersion 保存当前版本号，作为下一次运行的基准
func (m *MigrationManager) saveReferenceVersion(version string) error {
	if m.stateFile == "" || !semver.IsValid(version) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.stateFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.stateFile, []byte(version), 0o644)
}

// canonical 补齐 semver 需要的 v 前缀
func canonical(version string) string {
	version = strings.TrimSpace(version)
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}
