package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPattern находит подстановки вида ${VAR} и ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnv подставляет переменные окружения, пустая переменная заменяется значением по умолчанию
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		return groups[2]
	})
}

// typedValue возвращает bool или int, если строка на них похожа, иначе саму строку
func typedValue(s string) any {
	if s == "true" || s == "false" {
		return s == "true"
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

// InitConfig читает конфигурационный файл и возвращает экземпляр конфигурации типа C.
// Все строковые значения проходят через подстановку ${VAR:-default}.
func InitConfig[C any](configFile string) (*C, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}

	for _, key := range v.AllKeys() {
		raw := v.GetString(key)
		if !strings.Contains(raw, "${") {
			continue
		}
		v.Set(key, typedValue(expandEnv(raw)))
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	// Конфигурации с методом Normalize получают значения по умолчанию
	if n, ok := any(cfg).(interface{ Normalize() }); ok {
		n.Normalize()
	}

	return cfg, nil
}

// Load загружает .env (если есть) и конфигурацию приложения из файла
func Load(configFile string) (*Config, error) {
	// Отсутствие .env не ошибка
	_ = godotenv.Load()

	return InitConfig[Config](configFile)
}
