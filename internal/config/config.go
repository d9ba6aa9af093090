// Package config loads the pipeline configuration document. The resulting
// *Config is built once at process start and handed to every component.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/farxc/dre_warehouse/internal/env"
	"github.com/farxc/dre_warehouse/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	ETL      ETLConfig      `yaml:"etl"`
	Logging  LoggingConfig  `yaml:"logging"`
	DQ       QualityConfig  `yaml:"dq"`
	Output   OutputConfig   `yaml:"output"`
	API      APIConfig      `yaml:"api"`

	baseDir string
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Name        string `yaml:"name"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	SSLMode     string `yaml:"sslmode"`
	PoolSize    int    `yaml:"pool_size"`
	MaxOverflow int    `yaml:"max_overflow"`
	MaxIdleTime string `yaml:"max_idle_time"`
}

type ETLConfig struct {
	SourceFile    string            `yaml:"source_file"`
	Sheets        map[string]string `yaml:"sheets"`
	ReferenceYear int               `yaml:"ano_referencia"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Folder string `yaml:"folder"`
}

// QualityConfig holds the expected totals and bands used by the quality gate.
type QualityConfig struct {
	TolerancePercent float64 `yaml:"tolerance_percent"`
	RevenueRealized  float64 `yaml:"receita_bruta_realizado"`
	RevenueBudgeted  float64 `yaml:"receita_bruta_orcado"`
	ExpensesRealized float64 `yaml:"despesas_realizado"`
	ExpensesBudgeted float64 `yaml:"despesas_orcado"`
	NetIncome        float64 `yaml:"lucro_liquido"`
	MarginMin        float64 `yaml:"margin_min"`
	MarginMax        float64 `yaml:"margin_max"`
	FailOnError      bool    `yaml:"fail_on_error"`
}

type OutputConfig struct {
	Folder string `yaml:"folder"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      DriverPostgres,
			SSLMode:     "disable",
			PoolSize:    5,
			MaxOverflow: 10,
			MaxIdleTime: "15m",
		},
		Logging: LoggingConfig{Level: "INFO", Folder: "logs"},
		DQ: QualityConfig{
			TolerancePercent: 0.01,
			RevenueRealized:  67629718.14,
			RevenueBudgeted:  68369172.32,
			ExpensesRealized: -41613267.98,
			ExpensesBudgeted: -48774529.00,
			NetIncome:        18572919.69,
			MarginMin:        0.20,
			MarginMax:        0.40,
		},
		Output: OutputConfig{Folder: "output"},
		API:    APIConfig{Addr: ":8080"},
	}
}

// Load reads the YAML document at path, applies DRE_* environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse is Load for an in-memory document. Relative paths are resolved against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("malformed config: %w", err)
	}
	cfg.baseDir = baseDir
	cfg.loadEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadEnv() {
	c.Database.Driver = env.GetString("DRE_DB_DRIVER", c.Database.Driver)
	c.Database.Host = env.GetString("DRE_DB_HOST", c.Database.Host)
	c.Database.Port = env.GetInt("DRE_DB_PORT", c.Database.Port)
	c.Database.Name = env.GetString("DRE_DB_NAME", c.Database.Name)
	c.Database.User = env.GetString("DRE_DB_USER", c.Database.User)
	c.Database.Password = env.GetString("DRE_DB_PASSWORD", c.Database.Password)
	c.ETL.SourceFile = env.GetString("DRE_SOURCE_FILE", c.ETL.SourceFile)
	c.Logging.Level = env.GetString("DRE_LOG_LEVEL", c.Logging.Level)
	c.DQ.FailOnError = env.GetBool("DRE_DQ_FAIL_ON_ERROR", c.DQ.FailOnError)
	c.API.Addr = env.GetString("DRE_API_ADDR", c.API.Addr)
}

// ValidationError lists every problem found in a configuration document.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string {
	problems := multierr.Errors(e.err)
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = "  - " + p.Error()
	}
	return "invalid configuration:\n" + strings.Join(lines, "\n")
}

func (e *ValidationError) Unwrap() error { return e.err }

// Problems returns the individual validation failures.
func (e *ValidationError) Problems() []error { return multierr.Errors(e.err) }

func (c *Config) validate() error {
	var err error
	required := func(key string) {
		err = multierr.Append(err, fmt.Errorf("%s is required", key))
	}

	db := c.Database
	switch db.Driver {
	case DriverPostgres:
		if db.Host == "" {
			required("database.host")
		}
		if db.Port == 0 {
			required("database.port")
		}
		if db.Name == "" {
			required("database.name")
		}
		if db.User == "" {
			required("database.user")
		}
		if db.Password == "" {
			required("database.password")
		}
	case DriverSQLite:
		if db.Name == "" {
			required("database.name")
		}
	default:
		err = multierr.Append(err, fmt.Errorf("database.driver %q is not supported", db.Driver))
	}

	if c.ETL.SourceFile == "" {
		required("etl.source_file")
	}
	if len(c.ETL.Sheets) == 0 {
		required("etl.sheets")
	}
	if c.ETL.ReferenceYear == 0 {
		required("etl.ano_referencia")
	}

	if _, lerr := logger.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	if c.DQ.TolerancePercent < 0 {
		err = multierr.Append(err, fmt.Errorf("dq.tolerance_percent must not be negative"))
	}
	if c.DQ.MarginMin > c.DQ.MarginMax {
		err = multierr.Append(err, fmt.Errorf("dq.margin_min must not exceed dq.margin_max"))
	}

	if err != nil {
		return &ValidationError{err: err}
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Name
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// MaxOpenConns is the pool size plus its overflow allowance.
func (d DatabaseConfig) MaxOpenConns() int {
	return d.PoolSize + d.MaxOverflow
}

// LogLevel returns the parsed logging level. Validation guarantees it parses.
func (c *Config) LogLevel() logger.LogLevel {
	level, _ := logger.ParseLevel(c.Logging.Level)
	return level
}

// IsRemoteSource reports whether etl.source_file is an http(s) URL.
func (c *Config) IsRemoteSource() bool {
	s := strings.ToLower(c.ETL.SourceFile)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// SourcePath resolves etl.source_file against the directory of the config file.
func (c *Config) SourcePath() string {
	return c.resolve(c.ETL.SourceFile)
}

// OutputDir resolves output.folder against the directory of the config file.
func (c *Config) OutputDir() string {
	return c.resolve(c.Output.Folder)
}

// LogDir resolves logging.folder against the directory of the config file.
func (c *Config) LogDir() string {
	return c.resolve(c.Logging.Folder)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}
