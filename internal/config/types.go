package config

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ConfigServer настройки HTTP сервера
type ConfigServer struct {
	PortHTTP                int `mapstructure:"port_http"`
	HTTPReadTimeout         int `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int `mapstructure:"graceful_shutdown_timeout"`
	// MissingEntityStatus HTTP статус для ссылок на несуществующие заметки и теги (400 или 404)
	MissingEntityStatus int `mapstructure:"missing_entity_status"`
}

// ConfigGateway настройки CORS и rate limiting HTTP API
type ConfigGateway struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigDatabase настройки хранилища
type ConfigDatabase struct {
	Driver      string `mapstructure:"driver"` // postgres, bolt или memory
	DSN         string `mapstructure:"dsn"`
	Path        string `mapstructure:"path"` // файл базы для bolt
	MaxConns    int    `mapstructure:"max_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// ConfigAuth настройки авторизации
type ConfigAuth struct {
	// TokenHash bcrypt-хэш bearer токена, пустое значение отключает авторизацию
	TokenHash string `mapstructure:"token_hash"`
}

// Config основная структура конфигурации
type Config struct {
	Logger   *ConfigLogger   `mapstructure:"logger"`
	Server   *ConfigServer   `mapstructure:"server"`
	Gateway  *ConfigGateway  `mapstructure:"gateway"`
	Database *ConfigDatabase `mapstructure:"database"`
	Auth     *ConfigAuth     `mapstructure:"auth"`
}
