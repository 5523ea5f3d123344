package config

import "time"

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level string `mapstructure:"level"`
}

// ConfigServer настройки REST backend-а
type ConfigServer struct {
	Port                    int `mapstructure:"port"`
	HTTPReadTimeout         int `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int `mapstructure:"graceful_shutdown_timeout"`
}

// ConfigGateway настройки HTTP middleware backend-а
type ConfigGateway struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigStorage настройки хранилища событий
type ConfigStorage struct {
	// Driver: memory, file или mysql
	Driver string `mapstructure:"driver"`
	// Path путь к YAML-файлу для driver=file
	Path string `mapstructure:"path"`
	// DSN строка подключения для driver=mysql
	DSN string `mapstructure:"dsn"`
}

// ConfigSwagger настройки раздачи OpenAPI документа
type ConfigSwagger struct {
	Enabled bool `mapstructure:"enabled"`
}

// ConfigWeb настройки веб-интерфейса
type ConfigWeb struct {
	Port       int    `mapstructure:"port"`
	APIBaseURL string `mapstructure:"api_base_url"`
	// RequestTimeout таймаут запроса к API в секундах
	RequestTimeout int `mapstructure:"request_timeout"`
	// Reconcile стратегия после create/update: refetch или local
	Reconcile string `mapstructure:"reconcile"`
	// SessionTTL время жизни неактивной сессии в минутах
	SessionTTL int `mapstructure:"session_ttl"`
}

// Config основная структура конфигурации
type Config struct {
	Logger  *ConfigLogger  `mapstructure:"logger"`
	Server  *ConfigServer  `mapstructure:"server"`
	Gateway *ConfigGateway `mapstructure:"gateway"`
	Storage *ConfigStorage `mapstructure:"storage"`
	Swagger *ConfigSwagger `mapstructure:"swagger"`
	Web     *ConfigWeb     `mapstructure:"web"`
}

// Normalize заполняет отсутствующие секции и нулевые значения значениями по умолчанию
func (c *Config) Normalize() {
	if c.Logger == nil {
		c.Logger = &ConfigLogger{}
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}

	if c.Server == nil {
		c.Server = &ConfigServer{}
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.GracefulShutdownTimeout == 0 {
		c.Server.GracefulShutdownTimeout = 10
	}

	if c.Gateway == nil {
		c.Gateway = &ConfigGateway{}
	}
	if c.Gateway.CORSAllowedOrigins == "" {
		c.Gateway.CORSAllowedOrigins = "http://localhost:3000"
	}

	if c.Storage == nil {
		c.Storage = &ConfigStorage{}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}

	if c.Swagger == nil {
		c.Swagger = &ConfigSwagger{}
	}

	if c.Web == nil {
		c.Web = &ConfigWeb{}
	}
	if c.Web.Port == 0 {
		c.Web.Port = 3000
	}
	if c.Web.APIBaseURL == "" {
		c.Web.APIBaseURL = "http://localhost:3001"
	}
	if c.Web.RequestTimeout == 0 {
		c.Web.RequestTimeout = 10
	}
	if c.Web.Reconcile == "" {
		c.Web.Reconcile = "refetch"
	}
	if c.Web.SessionTTL == 0 {
		c.Web.SessionTTL = 30
	}
}

// Seconds переводит значение из конфига (в секундах) в time.Duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
