package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	LinesFile   string `mapstructure:"lines_file"`
	PlanFile    string `mapstructure:"plan_file"`
	SecondShift bool   `mapstructure:"second_shift"`
	Seed        int    `mapstructure:"seed"`

	// Real time spent per simulated hour; zero runs the simulation flat out.
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// Safety ceilings against malformed configuration.
	MaxNetHours float64 `mapstructure:"max_net_hours"`
	MaxRunHours float64 `mapstructure:"max_run_hours"`

	Demo        bool `mapstructure:"demo"`
	DemoLines   int  `mapstructure:"demo_lines"`
	DemoClients int  `mapstructure:"demo_clients"`
	DemoItems   int  `mapstructure:"demo_items"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`

	OutputFormat      string `mapstructure:"output_format"`
	OutputPath        string `mapstructure:"output_path"`
	OutputFolder      string `mapstructure:"output_folder"`
	OutputDestination string `mapstructure:"output_destination"`

	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
	Database     DatabaseConfig     `mapstructure:"database"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv()

	viper.SetDefault("max_net_hours", 999.0)
	viper.SetDefault("max_run_hours", 48.0)
	viper.SetDefault("output_destination", "local")
	viper.SetDefault("output_folder", "runs")
	viper.SetDefault("demo_lines", 4)
	viper.SetDefault("demo_clients", 3)
	viper.SetDefault("demo_items", 2)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
