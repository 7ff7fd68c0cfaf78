package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

type ConfigSchema struct {
	Databases struct {
		// Driver: "postgres" (по умолчанию) или "sqlite"
		Driver   string     `yaml:"driver"`
		Path     string     `yaml:"path"` // файл SQLite, только для driver == sqlite
		Master   DBConfig   `yaml:"master"`
		Replicas []DBConfig `yaml:"replicas"`
	} `yaml:"db"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// ProfileCacheTTL в секундах
		ProfileCacheTTL int `yaml:"profile_cache_ttl"`
	} `yaml:"redis"`
	RabbitMQ struct {
		Enabled  bool   `yaml:"enabled"`
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
	Auth struct {
		JWTSecret       string `yaml:"jwt_secret"`
		TrustUserHeader bool   `yaml:"trust_user_header"`
	} `yaml:"auth"`
	Backend struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"backend"`
	Logs struct {
		Level string `yaml:"level"`
		Env   string `yaml:"env"`
	} `yaml:"logs"`
}

var AppConfig *ConfigSchema

// LoadConfig читает YAML, применяет переменные окружения и значения по умолчанию
// и сохраняет результат в AppConfig
func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	conf, err := Parse(data)
	if err != nil {
		return err
	}
	AppConfig = conf
	return nil
}

func Parse(data []byte) (*ConfigSchema, error) {
	conf := &ConfigSchema{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	conf.applyEnv()
	conf.applyDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// секреты могут приходить из окружения (или .env), а не из YAML
func (c *ConfigSchema) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Databases.Master.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logs.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Backend.Port = port
		}
	}
}

func (c *ConfigSchema) applyDefaults() {
	if c.Databases.Driver == "" {
		c.Databases.Driver = "postgres"
	}
	if c.Databases.Master.Port == 0 {
		c.Databases.Master.Port = 5432
	}
	for i := range c.Databases.Replicas {
		if c.Databases.Replicas[i].Port == 0 {
			c.Databases.Replicas[i].Port = 5432
		}
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.ProfileCacheTTL == 0 {
		c.Redis.ProfileCacheTTL = 3600
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "social_graph_events"
	}
	if c.Backend.Port == 0 {
		c.Backend.Port = 8080
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Logs.Env == "" {
		c.Logs.Env = "production"
	}
}

func (c *ConfigSchema) Validate() error {
	switch c.Databases.Driver {
	case "postgres":
		if c.Databases.Master.Host == "" {
			return fmt.Errorf("db.master.host is required")
		}
		if c.Databases.Master.DBName == "" {
			return fmt.Errorf("db.master.name is required")
		}
	case "sqlite":
		if c.Databases.Path == "" {
			return fmt.Errorf("db.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported db driver %q", c.Databases.Driver)
	}
	if c.Auth.JWTSecret == "" && !c.Auth.TrustUserHeader {
		return fmt.Errorf("auth.jwt_secret is required unless auth.trust_user_header is set")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("rabbitmq.url is required when rabbitmq is enabled")
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required when redis is enabled")
	}
	return nil
}

func (c *ConfigSchema) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Backend.Host, c.Backend.Port)
}

func (c *ConfigSchema) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
