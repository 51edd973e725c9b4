package swipe

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/dev-nick421/immich-swipe/internal/adapters/http/immich"
	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

const (
	HistoryBackendMemory = "memory"
	HistoryBackendMySQL  = "mysql"
)

type Config struct {
	ServerURL         string
	APIKey            string
	User              string
	StorePath         string
	HTTPAddr          string
	KeepAlbumID       string
	Order             domain.OrderMode
	SkipVideos        bool
	HistoryBackend    string
	MySQLDSN          string
	QueueTickInterval time.Duration
	PreloadTimeout    time.Duration
	RequestTimeout    time.Duration
	// ConfigFile is the file the config was read from, empty when none.
	ConfigFile string
}

// NewViper returns a viper instance reading IMMICH_SWIPE_* variables and an
// optional .immich-swipe.yaml from $IMMICH_SWIPE_CONFIG_PATH or ./.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("user", "default")
	v.SetDefault("store_path", "~/.immich-swipe")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("order", string(domain.OrderRandom))
	v.SetDefault("skip_videos", false)
	v.SetDefault("history_backend", HistoryBackendMemory)
	v.SetDefault("queue_tick_interval", 100*time.Millisecond)
	v.SetDefault("preload_timeout", 30*time.Second)
	v.SetDefault("request_timeout", 15*time.Second)

	v.SetConfigName(".immich-swipe")
	v.SetEnvPrefix("IMMICH_SWIPE")
	v.AutomaticEnv()

	if override := os.Getenv("IMMICH_SWIPE_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	return v
}

func LoadConfig(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	order, err := domain.ParseOrderMode(v.GetString("order"))
	if err != nil {
		return Config{}, fmt.Errorf("config order: %w", err)
	}

	storePath, err := homedir.Expand(v.GetString("store_path"))
	if err != nil {
		return Config{}, fmt.Errorf("config store_path: %w", err)
	}

	cfg := Config{
		ServerURL:         strings.TrimRight(strings.TrimSpace(v.GetString("server_url")), "/"),
		APIKey:            v.GetString("api_key"),
		User:              v.GetString("user"),
		StorePath:         storePath,
		HTTPAddr:          v.GetString("http_addr"),
		KeepAlbumID:       v.GetString("keep_album_id"),
		Order:             order,
		SkipVideos:        v.GetBool("skip_videos"),
		HistoryBackend:    v.GetString("history_backend"),
		MySQLDSN:          v.GetString("mysql_dsn"),
		QueueTickInterval: v.GetDuration("queue_tick_interval"),
		PreloadTimeout:    v.GetDuration("preload_timeout"),
		RequestTimeout:    v.GetDuration("request_timeout"),
		ConfigFile:        v.ConfigFileUsed(),
	}
	return cfg, nil
}

// Validate fails fast on settings that no retry can fix.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return immich.ErrNotConfigured
	}
	switch c.HistoryBackend {
	case HistoryBackendMemory:
	case HistoryBackendMySQL:
		if c.MySQLDSN == "" {
			return errors.New("mysql_dsn is required for the mysql history backend")
		}
	default:
		return fmt.Errorf("unknown history backend %q", c.HistoryBackend)
	}
	return nil
}
