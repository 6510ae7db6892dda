package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Transcode TranscodeConfig `mapstructure:"transcode"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       LogConfig       `mapstructure:"log"`
	Pyroscope PyroscopeConfig `mapstructure:"pyroscope"`
}

// BotConfig 机器人配置
type BotConfig struct {
	Token          string        `mapstructure:"token"`
	APIEndpoint    string        `mapstructure:"api_endpoint"`
	OwnerID        int64         `mapstructure:"owner_id"`
	DownloadDir    string        `mapstructure:"download_dir"`
	MaxFileSize    int64         `mapstructure:"max_file_size"`
	UpdateTimeout  int           `mapstructure:"update_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ServerConfig 状态服务配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// ArchiveConfig 产物归档存储配置（S3兼容，可选）
type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// TranscodeConfig 转码配置
type TranscodeConfig struct {
	FFmpeg   FFmpegConfig   `mapstructure:"ffmpeg"`
	Defaults EncodeDefaults `mapstructure:"defaults"`
}

// FFmpegConfig FFmpeg相关配置
type FFmpegConfig struct {
	BinaryPath  string        `mapstructure:"binary_path"`
	ProbePath   string        `mapstructure:"probe_path"`
	TempDir     string        `mapstructure:"temp_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
	StderrLines int           `mapstructure:"stderr_lines"`
}

// EncodeDefaults 默认编码参数，用户未持久化设置时生效
type EncodeDefaults struct {
	Codec        string `mapstructure:"codec"`
	CRF          int    `mapstructure:"crf"`
	Resolution   string `mapstructure:"resolution"`
	Preset       string `mapstructure:"preset"`
	AudioCodec   string `mapstructure:"audio_codec"`
	AudioBitrate string `mapstructure:"audio_bitrate"`
}

// WorkerConfig Worker相关配置
type WorkerConfig struct {
	MaxConcurrentJobs   int           `mapstructure:"max_concurrent_jobs"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// PyroscopeConfig 持续性能剖析配置
type PyroscopeConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServerAddress string `mapstructure:"server_address"`
	AuthToken     string `mapstructure:"auth_token"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("bot.download_dir", "downloads")
	viper.SetDefault("bot.max_file_size", int64(2)<<30)
	viper.SetDefault("bot.update_timeout", 60)
	viper.SetDefault("server.port", 8084)
	viper.SetDefault("redis.key_prefix", "compressbot")

	// 设置环境变量前缀
	viper.SetEnvPrefix("COMPRESS_BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	// 解析配置
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	if c.Bot.DownloadDir == "" {
		c.Bot.DownloadDir = "downloads"
	}
	if c.Bot.MaxFileSize <= 0 {
		c.Bot.MaxFileSize = int64(2) << 30
	}
	if c.Bot.UpdateTimeout <= 0 {
		c.Bot.UpdateTimeout = 60
	}
	if c.Bot.RequestTimeout <= 0 {
		c.Bot.RequestTimeout = 30 * time.Second
	}

	// Worker相关默认值
	if c.Worker.MaxConcurrentJobs <= 0 {
		c.Worker.MaxConcurrentJobs = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.MaxConcurrentJobs * 10
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}

	// FFmpeg默认值
	if c.Transcode.FFmpeg.TempDir == "" {
		c.Transcode.FFmpeg.TempDir = c.Bot.DownloadDir
	}
	if c.Transcode.FFmpeg.BinaryPath == "" {
		c.Transcode.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.Transcode.FFmpeg.ProbePath == "" {
		c.Transcode.FFmpeg.ProbePath = "ffprobe"
	}
	if c.Transcode.FFmpeg.Timeout == 0 {
		c.Transcode.FFmpeg.Timeout = 2 * time.Hour
	}
	if c.Transcode.FFmpeg.StderrLines <= 0 {
		c.Transcode.FFmpeg.StderrLines = 200
	}

	// 默认编码参数
	if c.Transcode.Defaults.Codec == "" {
		c.Transcode.Defaults.Codec = "libx264"
	}
	if c.Transcode.Defaults.CRF <= 0 {
		c.Transcode.Defaults.CRF = 25
	}
	if c.Transcode.Defaults.Resolution == "" {
		c.Transcode.Defaults.Resolution = "854x480"
	}
	if c.Transcode.Defaults.Preset == "" {
		c.Transcode.Defaults.Preset = "veryfast"
	}
	if c.Transcode.Defaults.AudioCodec == "" {
		c.Transcode.Defaults.AudioCodec = "libopus"
	}
	if c.Transcode.Defaults.AudioBitrate == "" {
		c.Transcode.Defaults.AudioBitrate = "48k"
	}

	// 兼容不同的密钥字段
	if c.Archive.AccessKeyID == "" {
		c.Archive.AccessKeyID = c.Archive.AccessKey
	}
	if c.Archive.SecretAccessKey == "" {
		c.Archive.SecretAccessKey = c.Archive.SecretKey
	}

	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "compressbot"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8084
	}
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ResolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func ResolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
