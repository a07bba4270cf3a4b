// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"

	"github.com/haierkeys/menu-tree-service/internal/dao"
	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/routing"
	"github.com/haierkeys/menu-tree-service/internal/service"
	"github.com/haierkeys/menu-tree-service/pkg/util"
	"github.com/haierkeys/menu-tree-service/pkg/workerpool"
	"github.com/haierkeys/menu-tree-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
	Menu     MenuConfig     `yaml:"menu"`
	Routing  routing.Config `yaml:"routing"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（pprof 与 metrics），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型：sqlite、mysql、postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/menu.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Port 端口，仅 postgres 使用
	Port int `yaml:"port" default:"5432"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time" default:"true"`
	// SSLMode postgres sslmode
	SSLMode string `yaml:"ssl-mode" default:"disable"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100；sqlite 固定为 1
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"50"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"200"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置（后台重建任务）
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"2"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"16"`

	// Write Queue 配置（按菜单串行化写操作）
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// MenuConfig 菜单树配置
type MenuConfig struct {
	// MaxDepth 菜单最大层级数
	MaxDepth int `yaml:"max-depth" default:"9"`
	// DeclarationsDir 模块链接声明目录（*.links.menu.yml）
	DeclarationsDir string `yaml:"declarations-dir" default:"config/links"`
	// WatchDeclarations 声明文件变化时自动重建
	WatchDeclarations bool `yaml:"watch-declarations"`
	// WatchInterval 声明目录轮询间隔（毫秒）
	WatchInterval int `yaml:"watch-interval" default:"5000"`
	// RebuildOnStart 启动时执行一次重建
	RebuildOnStart bool `yaml:"rebuild-on-start"`
	// RebuildCron 定时重建的 cron 表达式，为空时不启用
	RebuildCron string `yaml:"rebuild-cron"`
	// PluginTitleOverridable 是否允许覆盖模块链接的标题与描述
	PluginTitleOverridable bool `yaml:"plugin-title-overridable"`
	// SystemMenus 系统菜单，启动时确保存在且不可删除
	SystemMenus []SystemMenu `yaml:"system-menus"`
}

// SystemMenu 系统菜单定义
type SystemMenu struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪，同时启用数据库查询追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// DefaultSystemMenus 未配置系统菜单时使用的默认值
func DefaultSystemMenus() []SystemMenu {
	return []SystemMenu{
		{ID: "account", Label: "User account menu", Description: "Links related to the active user account"},
		{ID: "admin", Label: "Administration", Description: "Administrative task links"},
		{ID: "footer", Label: "Footer", Description: "Site information links"},
		{ID: "main", Label: "Main navigation", Description: "Site section links"},
		{ID: "tools", Label: "Tools", Description: "User tool links, often added by modules"},
	}
}

// DefaultConfig 返回全部取默认值的配置
func DefaultConfig() (*AppConfig, error) {
	c := new(AppConfig)
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}
	c.normalize()
	return c, nil
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	// 先设置默认值，YAML 中出现的字段会覆盖
	c, err := DefaultConfig()
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	c.normalize()
	return c, realpath, nil
}

// normalize 填充无法通过 struct tag 表达的默认值
func (c *AppConfig) normalize() {
	if len(c.Menu.SystemMenus) == 0 {
		c.Menu.SystemMenus = DefaultSystemMenus()
	}
	if c.Menu.MaxDepth <= 0 {
		c.Menu.MaxDepth = 9
	}
	if len(c.Routing.Routes) == 0 {
		c.Routing.Routes = routing.DefaultRoutes()
	}
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// DaoConfig 转换为 DAO 层使用的数据库配置
func (c *AppConfig) DaoConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		SSLMode:         c.Database.SSLMode,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
		Tracing:         c.Tracer.Enabled,
	}
}

// ServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) ServiceConfig() *service.ServiceConfig {
	menus := make([]domain.Menu, 0, len(c.Menu.SystemMenus))
	for _, m := range c.Menu.SystemMenus {
		menus = append(menus, domain.Menu{ID: m.ID, Label: m.Label, Description: m.Description, Locked: true})
	}
	return &service.ServiceConfig{
		MaxDepth:               c.Menu.MaxDepth,
		PluginTitleOverridable: c.Menu.PluginTitleOverridable,
		SystemMenus:            menus,
		DefaultPageSize:        c.App.DefaultPageSize,
		MaxPageSize:            c.App.MaxPageSize,
	}
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}
	if c.App.WriteQueueIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil {
			cfg.IdleTimeout = idleTime
		}
	}

	return cfg
}
