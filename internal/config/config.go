package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const envPrefix = "FREIGHT_"

type Config struct {
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Workers       int    `env:"WORKERS" envDefault:"1"`
	StrictWeights bool   `env:"STRICT_WEIGHTS" envDefault:"false"`

	Sheets  SheetsConfig  `envPrefix:"SHEET_"`
	Columns ColumnsConfig `envPrefix:"COLUMN_"`
	Notify  NotifyConfig  `envPrefix:"NOTIFY_"`
}

// SheetsConfig describes where headers sit in each input group. Rows are
// 1-based; the weight/size report (B) carries five banner rows above its header.
type SheetsConfig struct {
	AHeaderRow  int    `env:"A_HEADER_ROW" envDefault:"1"`
	BHeaderRow  int    `env:"B_HEADER_ROW" envDefault:"6"`
	CHeaderRow  int    `env:"C_HEADER_ROW" envDefault:"1"`
	OutputSheet string `env:"OUTPUT_NAME" envDefault:"Sheet1"`
}

type ColumnsConfig struct {
	Key  string `env:"KEY" envDefault:"运单号"`
	AKey string `env:"A_KEY" envDefault:"黑猫单号"`
	CKey string `env:"C_KEY" envDefault:"系统单号"`

	Weight     string `env:"WEIGHT" envDefault:"实重"`
	Dimensions string `env:"DIMENSIONS" envDefault:"尺寸"`
	Address    string `env:"ADDRESS" envDefault:"收件人地址"`

	DimensionsCopy string `env:"DIMENSIONS_COPY" envDefault:"尺寸j"`
	WeightCopy     string `env:"WEIGHT_COPY" envDefault:"实重j"`
	BillableWeight string `env:"BILLABLE_WEIGHT" envDefault:"计费重j"`
	Freight        string `env:"FREIGHT" envDefault:"运费j"`
	Region         string `env:"REGION" envDefault:"地区j"`
	Surcharge      string `env:"SURCHARGE" envDefault:"额外费用j"`
	Total          string `env:"TOTAL" envDefault:"总费用j"`
}

type NotifyConfig struct {
	TelegramToken  string        `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64         `env:"TELEGRAM_CHAT_ID"`
	RetryMaxTime   time.Duration `env:"RETRY_MAX_TIME" envDefault:"30s"`
}

// TelegramEnabled reports whether both the bot token and the target chat are set.
func (n NotifyConfig) TelegramEnabled() bool {
	return n.TelegramToken != "" && n.TelegramChatID != 0
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	for name, row := range map[string]int{
		"A": c.Sheets.AHeaderRow,
		"B": c.Sheets.BHeaderRow,
		"C": c.Sheets.CHeaderRow,
	} {
		if row < 1 {
			return fmt.Errorf("header row for %s must be at least 1, got %d", name, row)
		}
	}

	if c.Columns.Key == "" {
		return fmt.Errorf("join key column name is required")
	}
	if c.Sheets.OutputSheet == "" {
		return fmt.Errorf("output sheet name is required")
	}

	return nil
}
