package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// LoadDotEnv загружает переменные окружения из .env файлов, если они есть.
// Уже заданные переменные окружения не перезаписываются
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("godotenv.Load(%s): %w", f, err)
		}
	}
	return nil
}

// EnvPrefix префикс переменных окружения, переопределяющих ключи конфига:
// server.port_http → NOTES_SERVER_PORT_HTTP
const EnvPrefix = "NOTES"

// expandEnvWithDefaults подставляет переменные окружения в формате ${VAR:-default}.
// Пустая переменная считается незаданной
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		return groups[2]
	})
}

// coerce приводит строку после подстановки к bool или int, иначе оставляет строкой.
// Без этого viper не разберет "${PORT:-8080}" в поле int
func coerce(value string) any {
	if value == "true" || value == "false" {
		return value == "true"
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

// InitConfig читает конфигурационный файл в структуру C.
// Порядок приоритета: NOTES_* переменные, затем ${VAR:-default} в файле, затем значения файла
func InitConfig[C any](configFile string) (*C, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}

	// GetString уже учитывает NOTES_* переменные, Set фиксирует итоговое значение
	for _, key := range v.AllKeys() {
		if raw := v.GetString(key); raw != "" {
			v.Set(key, coerce(expandEnvWithDefaults(raw)))
		}
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	return cfg, nil
}

// Load читает конфигурацию сервиса и заполняет незаданные значения по умолчанию
func Load(configFile string) (*Config, error) {
	cfg, err := InitConfig[Config](configFile)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = &ConfigLogger{}
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}

	if c.Server == nil {
		c.Server = &ConfigServer{}
	}
	if c.Server.PortHTTP == 0 {
		c.Server.PortHTTP = 8080
	}
	if c.Server.GracefulShutdownTimeout == 0 {
		c.Server.GracefulShutdownTimeout = 10
	}
	if c.Server.MissingEntityStatus == 0 {
		c.Server.MissingEntityStatus = 400
	}

	if c.Gateway == nil {
		c.Gateway = &ConfigGateway{}
	}
	if c.Gateway.CORSAllowedOrigins == "" {
		c.Gateway.CORSAllowedOrigins = "*"
	}

	if c.Database == nil {
		c.Database = &ConfigDatabase{}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}

	if c.Auth == nil {
		c.Auth = &ConfigAuth{}
	}
}

// Validate проверяет значения, которые нельзя исправить значением по умолчанию
func (c *Config) Validate() error {
	switch c.Server.MissingEntityStatus {
	case 400, 404:
	default:
		return fmt.Errorf("server.missing_entity_status must be 400 or 404, got %d", c.Server.MissingEntityStatus)
	}

	// Хэш из .env без кавычек портится подстановкой $..., лучше упасть при старте
	if c.Auth.TokenHash != "" {
		if _, err := bcrypt.Cost([]byte(c.Auth.TokenHash)); err != nil {
			return fmt.Errorf("auth.token_hash is not a valid bcrypt hash (quote it in .env): %w", err)
		}
	}

	switch c.Database.Driver {
	case "memory":
	case "bolt":
		if c.Database.Path == "" {
			return errors.New("database.path is required for bolt driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}
