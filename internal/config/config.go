package config

import (
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"

	"kalimati/internal/pipeline"
)

type Config struct {
	Database Database `yaml:"database"`
	Merger   Merger   `yaml:"merger"`
	Market   Market   `yaml:"market"`
	Schedule Schedule `yaml:"schedule"`
	Logger   Logger   `yaml:"logger"`
}

type Database struct {
	Host     string `env:"DB_HOST" env-default:"localhost" yaml:"host"`
	Port     int    `env:"DB_PORT" env-default:"5432" yaml:"port"`
	User     string `env:"DB_USER" env-default:"postgres" yaml:"user"`
	Password string `env:"DB_PASSWORD" env-default:"postgres" yaml:"password"`
	Name     string `env:"DB_NAME" env-default:"postgres" yaml:"name"`
	SSLMode  string `env-default:"disable" yaml:"ssl-mode"`
}

func (d *Database) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Source is one raw export feeding the merger.
type Source struct {
	Path          string   `yaml:"path"`
	HasHeader     bool     `yaml:"has_header"`
	ReplaceHeader bool     `yaml:"replace_header"`
	DropColumns   []string `yaml:"drop_columns"`
}

func (s Source) Spec() pipeline.SourceSpec {
	return pipeline.SourceSpec{Path: s.Path, HasHeader: s.HasHeader, ReplaceHeader: s.ReplaceHeader, DropColumns: s.DropColumns}
}

type Merger struct {
	Sources      []Source          `yaml:"sources"`
	Output       string            `env:"MERGER_OUTPUT" env-default:"data/cleaned_kalimati_prices.csv" yaml:"output"`
	UnknownUnits string            `env:"MERGER_UNKNOWN_UNITS" env-default:"keep" yaml:"unknown_units"`
	Units        map[string]string `yaml:"units"`
	Report       string            `env:"MERGER_REPORT" env-default:"" yaml:"report"`

	ParsedUnknownUnits pipeline.UnknownUnitPolicy `yaml:"-"`
}

// SourceSpecs returns the configured sources in merge order.
func (m *Merger) SourceSpecs() []pipeline.SourceSpec {
	specs := make([]pipeline.SourceSpec, len(m.Sources))
	for i, source := range m.Sources {
		specs[i] = source.Spec()
	}

	return specs
}

type Market struct {
	URL       string `env:"MARKET_URL" env-default:"https://kalimatimarket.gov.np/price" yaml:"url"`
	Timezone  string `env-default:"Asia/Kathmandu" yaml:"timezone"`
	RawOutput string `env-default:"data/kalimati_daily_raw.csv" yaml:"raw_output"`
}

type Schedule struct {
	Spec string `env:"SCHEDULE_SPEC" env-default:"30 18 * * *" yaml:"spec"`
}

type Logger struct {
	Level           string     `env:"LOG_LEVEL" env-default:"info" yaml:"level"`
	ParsedSlogLevel slog.Level `yaml:"-"`
	GORMLevel       string     `env-default:"warn" yaml:"gorm_level"`
	ParsedGORMLevel slog.Level `yaml:"-"`
}

// Load reads config from a file and environment variables.
func Load(configPath string) (*Config, error) {
	cnf := &Config{}

	if err := cleanenv.ReadConfig(configPath, cnf); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	policy, err := pipeline.ParseUnknownUnitPolicy(cnf.Merger.UnknownUnits)
	if err != nil {
		return nil, fmt.Errorf("merger.unknown_units: %w", err)
	}
	cnf.Merger.ParsedUnknownUnits = policy

	for i, source := range cnf.Merger.Sources {
		if source.Path == "" {
			return nil, fmt.Errorf("merger.sources[%d]: path is required", i)
		}
	}

	cnf.Logger.ParsedGORMLevel = parseLevel(cnf.Logger.GORMLevel, slog.LevelWarn)
	cnf.Logger.ParsedSlogLevel = parseLevel(cnf.Logger.Level, slog.LevelInfo)

	return cnf, nil
}

// MustLoad loads config from a file and panics on failure.
func MustLoad(configPath string) *Config {
	cnf, err := Load(configPath)
	if err != nil {
		panic(err)
	}

	return cnf
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch level {
	case "silent", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
