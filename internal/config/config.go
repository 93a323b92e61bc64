package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Freshbooks struct {
		BaseURL   string `yaml:"base_url"`
		Token     string `yaml:"token"`
		AccountID string `yaml:"account_id"`
	} `yaml:"freshbooks"`
	AWS struct {
		Region        string `yaml:"region"`
		Bucket        string `yaml:"bucket"`
		BucketBaseURL string `yaml:"bucket_base_url"`
		SESSender     string `yaml:"ses_sender"`
	} `yaml:"aws"`
	Google struct {
		MapsAPIKey     string `yaml:"maps_api_key"`
		FCMCredentials string `yaml:"fcm_credentials"`
	} `yaml:"google"`
	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`
	Sync struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"sync"`
}

// LoadConfig reads the yaml config, then lets env vars override secrets so
// deployments never have to commit tokens.
func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	overrideEnv(&cfg.Database.URL, "DATABASE_URL")
	overrideEnv(&cfg.Freshbooks.Token, "FRESHBOOKS_TOKEN")
	overrideEnv(&cfg.Freshbooks.AccountID, "FRESHBOOKS_ACCOUNT_ID")
	overrideEnv(&cfg.Google.MapsAPIKey, "GOOGLE_MAPS_API_KEY")
	overrideEnv(&cfg.Google.FCMCredentials, "FCM_CREDENTIALS_FILE")
	overrideEnv(&cfg.JWT.Secret, "JWT_SECRET")
	overrideEnv(&cfg.Redis.Password, "REDIS_PASSWORD")
	return cfg
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
