package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

const (
	DriverFile  = "file"
	DriverMySQL = "mysql"

	PinSchemeFNV   = "fnv"
	PinSchemeKeyed = "keyed"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Pin     PinConfig     `yaml:"pin"`
	MySQL   mysql.Config  `yaml:"mysql"`
}

type StorageConfig struct {
	// Driver: "file" (文字檔) 或 "mysql"
	Driver string `yaml:"driver"`
	// Path 文字檔路徑
	Path string `yaml:"path"`
	// Strict 資料檔有無法解析的行時回報錯誤，而不是停止讀取
	Strict bool `yaml:"strict"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File 為空時輸出到 stderr
	File string `yaml:"file"`
}

type PinConfig struct {
	// Scheme: "fnv" (未加鹽，相容舊資料) 或 "keyed" (BLAKE2b + Key)
	Scheme string `yaml:"scheme"`
	Key    string `yaml:"key"`
}

// Default 回傳預設設定
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   "accounts_secure.txt",
		},
		Log: LogConfig{
			Level: "info",
			File:  "bank.log",
		},
		Pin: PinConfig{
			Scheme: PinSchemeFNV,
		},
	}
}

// Load 讀取設定：預設值 → yaml 檔 → 環境變數。
// path 為空或檔案不存在時只使用預設值與環境變數。
// Load 不做 Validate：呼叫端套用完 CLI flag 後再自行呼叫一次。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnvironment(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 檢查設定值是否合法
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			return errors.New("config: storage.path is required for the file driver")
		}
	case DriverMySQL:
		if c.MySQL.Host == "" || c.MySQL.DBName == "" {
			return errors.New("config: mysql.host and mysql.dbname are required for the mysql driver")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Pin.Scheme {
	case PinSchemeFNV:
	case PinSchemeKeyed:
		if c.Pin.Key == "" {
			return errors.New("config: pin.key is required for the keyed scheme")
		}
	default:
		return fmt.Errorf("config: unknown pin.scheme %q", c.Pin.Scheme)
	}
	return nil
}

func applyEnvironment(cfg *Config) error {
	setString(&cfg.Storage.Driver, "BANK_STORAGE_DRIVER")
	setString(&cfg.Storage.Path, "BANK_DATA_FILE")
	setString(&cfg.Log.Level, "BANK_LOG_LEVEL")
	setString(&cfg.Log.File, "BANK_LOG_FILE")
	setString(&cfg.Pin.Scheme, "BANK_PIN_SCHEME")
	setString(&cfg.Pin.Key, "BANK_PIN_KEY")
	setString(&cfg.MySQL.Host, "MYSQL_HOST")
	setString(&cfg.MySQL.User, "MYSQL_USER")
	setString(&cfg.MySQL.Password, "MYSQL_PASSWORD")
	setString(&cfg.MySQL.DBName, "MYSQL_DB")

	if v := os.Getenv("BANK_STRICT_LOAD"); len(v) != 0 {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: BANK_STRICT_LOAD: %w", err)
		}
		cfg.Storage.Strict = strict
	}
	if v := os.Getenv("MYSQL_PORT"); len(v) != 0 {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MYSQL_PORT: %w", err)
		}
		cfg.MySQL.Port = port
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); len(v) != 0 {
		*dst = v
	}
}
