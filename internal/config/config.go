package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

type ServerConfig struct {
	Mode string
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"` // sqlite（默认）或 mysql
	Path      string `mapstructure:"path"`   // sqlite 文件路径
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type CatalogConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type GamificationConfig struct {
	// LevelTable 等级阈值表；为空时使用内置默认曲线
	LevelTable []int `mapstructure:"level_table"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("DREAMPATH")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.driver", "DATABASE_DRIVER")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Catalog
	viper.BindEnv("catalog.data_dir", "CATALOG_DATA_DIR")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "dreampath.db")
	viper.SetDefault("catalog.data_dir", "data")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
