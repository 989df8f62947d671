package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端与牌桌配置
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Redis       RedisConfig       `yaml:"redis"`
	Replication ReplicationConfig `yaml:"replication"`
	Security    SecurityConfig    `yaml:"security"`
	Table       TableConfig       `yaml:"table"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // 为空时允许所有来源
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ReplicationConfig 快照与动作的保留时间
type ReplicationConfig struct {
	SnapshotTTL int `yaml:"snapshot_ttl"` // 快照过期时间（小时）
	ActionTTL   int `yaml:"action_ttl"`   // 动作过期时间（秒）
}

// SnapshotTTLDuration 返回快照过期时长
func (c *ReplicationConfig) SnapshotTTLDuration() time.Duration {
	return time.Duration(c.SnapshotTTL) * time.Hour
}

// ActionTTLDuration 返回动作过期时长
func (c *ReplicationConfig) ActionTTLDuration() time.Duration {
	return time.Duration(c.ActionTTL) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig POST /action 的限流配置
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 封禁时长（秒）
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// TableConfig 牌桌进程配置
type TableConfig struct {
	BackendURL          string       `yaml:"backend_url"` // 为空时不同步远程状态
	SmallBlind          int64        `yaml:"small_blind"`
	BigBlind            int64        `yaml:"big_blind"`
	StartingChips       int64        `yaml:"starting_chips"`
	NotifyIntervalMS    int          `yaml:"notify_interval_ms"`
	MaxNotifications    int          `yaml:"max_notifications"`
	StateSyncDelayMS    int          `yaml:"state_sync_delay_ms"`
	ActionPollMS        int          `yaml:"action_poll_interval_ms"`
	BotDelayMS          int          `yaml:"bot_delay_ms"`
	ChipTransferDelayMS int          `yaml:"chip_transfer_delay_ms"`
	Seats               []SeatConfig `yaml:"seats"`
}

// SeatConfig 座位配置
type SeatConfig struct {
	Name string `yaml:"name"`
	Bot  bool   `yaml:"bot"`
}

// NotifyInterval 返回通知显示间隔
func (c *TableConfig) NotifyInterval() time.Duration {
	return time.Duration(c.NotifyIntervalMS) * time.Millisecond
}

// StateSyncDelay 返回状态同步的防抖时长
func (c *TableConfig) StateSyncDelay() time.Duration {
	return time.Duration(c.StateSyncDelayMS) * time.Millisecond
}

// ActionPollInterval 返回远程动作轮询间隔
func (c *TableConfig) ActionPollInterval() time.Duration {
	return time.Duration(c.ActionPollMS) * time.Millisecond
}

// BotDelay 返回机器人思考时长
func (c *TableConfig) BotDelay() time.Duration {
	return time.Duration(c.BotDelayMS) * time.Millisecond
}

// ChipTransferDelay 返回结算后的停顿时长
func (c *TableConfig) ChipTransferDelay() time.Duration {
	return time.Duration(c.ChipTransferDelayMS) * time.Millisecond
}

// Load 加载配置文件，未设置的字段使用默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	d := &cfg.Server
	if d.Host == "" {
		d.Host = "0.0.0.0"
	}
	if d.Port == 0 {
		d.Port = 1780
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}

	r := &cfg.Replication
	if r.SnapshotTTL == 0 {
		r.SnapshotTTL = 24
	}
	if r.ActionTTL == 0 {
		r.ActionTTL = 300
	}

	rl := &cfg.Security.RateLimit
	if rl.MaxPerSecond == 0 {
		rl.MaxPerSecond = 10
	}
	if rl.MaxPerMinute == 0 {
		rl.MaxPerMinute = 120
	}
	if rl.BanDuration == 0 {
		rl.BanDuration = 60
	}

	t := &cfg.Table
	if t.SmallBlind == 0 {
		t.SmallBlind = 10
	}
	if t.BigBlind == 0 {
		t.BigBlind = 2 * t.SmallBlind
	}
	if t.StartingChips == 0 {
		t.StartingChips = 1000
	}
	if t.NotifyIntervalMS == 0 {
		t.NotifyIntervalMS = 750
	}
	if t.MaxNotifications == 0 {
		t.MaxNotifications = 8
	}
	if t.StateSyncDelayMS == 0 {
		t.StateSyncDelayMS = 750
	}
	if t.ActionPollMS == 0 {
		t.ActionPollMS = 800
	}
	if t.BotDelayMS == 0 {
		t.BotDelayMS = 1000
	}
	if t.ChipTransferDelayMS == 0 {
		t.ChipTransferDelayMS = 1500
	}
	if len(t.Seats) == 0 {
		t.Seats = []SeatConfig{
			{Name: "You"},
			{Name: "Alice", Bot: true},
			{Name: "Bob", Bot: true},
			{Name: "Carol", Bot: true},
		}
	}
}
