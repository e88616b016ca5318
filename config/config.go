package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents a complete backtest/research run configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Research ResearchConfig `json:"research" yaml:"research"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains the simulated account parameters
type AccountConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	FeeRate        float64 `json:"fee_rate" yaml:"fee_rate"`
}

// StrategyConfig names the strategy and its parameter values
type StrategyConfig struct {
	Name    string             `json:"name" yaml:"name"`
	Market  string             `json:"market" yaml:"market"`
	Params  map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
	DataCSV string             `json:"data_csv" yaml:"data_csv"`

	// BarIntervalHours is the expected spacing of the input bars; the loader
	// rejects gapped series. 0 skips the check.
	BarIntervalHours int `json:"bar_interval_hours,omitempty" yaml:"bar_interval_hours,omitempty"`
}

// RiskConfig contains the risk manager limits
type RiskConfig struct {
	PerTradeRiskPct      float64 `json:"per_trade_risk_pct" yaml:"per_trade_risk_pct"`
	MaxDailyLossR        float64 `json:"max_daily_loss_r" yaml:"max_daily_loss_r"`
	MaxConcurrent        int     `json:"max_concurrent" yaml:"max_concurrent"`
	MaxPositionSizeUSD   float64 `json:"max_position_size_usd" yaml:"max_position_size_usd"`
	MaxExposurePerMarket float64 `json:"max_exposure_per_market" yaml:"max_exposure_per_market"`
}

// ResearchConfig drives walk-forward, Monte-Carlo and the optimizer
type ResearchConfig struct {
	TrainDays   int                  `json:"train_days" yaml:"train_days"`
	TestDays    int                  `json:"test_days" yaml:"test_days"`
	StepDays    int                  `json:"step_days" yaml:"step_days"`
	Anchored    bool                 `json:"anchored" yaml:"anchored"`
	Simulations int                  `json:"simulations" yaml:"simulations"`
	Seed        int64                `json:"seed" yaml:"seed"`
	Metric      string               `json:"metric" yaml:"metric"`
	TopN        int                  `json:"top_n" yaml:"top_n"`
	Grid        map[string][]float64 `json:"grid,omitempty" yaml:"grid,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Account.FeeRate < 0 {
		return fmt.Errorf("account.fee_rate must not be negative")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Market == "" {
		return fmt.Errorf("strategy.market is required")
	}
	if c.Strategy.BarIntervalHours < 0 {
		return fmt.Errorf("strategy.bar_interval_hours must not be negative")
	}
	if c.Risk.PerTradeRiskPct <= 0 || c.Risk.PerTradeRiskPct > 100 {
		return fmt.Errorf("risk.per_trade_risk_pct must be in (0, 100]")
	}
	if c.Risk.MaxDailyLossR <= 0 {
		return fmt.Errorf("risk.max_daily_loss_r must be positive")
	}
	if c.Research.TrainDays <= 0 || c.Research.TestDays <= 0 {
		return fmt.Errorf("research train_days and test_days must be positive")
	}
	if c.Research.Simulations <= 0 {
		return fmt.Errorf("research.simulations must be positive")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 10000,
			FeeRate:        0.0005,
		},
		Strategy: StrategyConfig{
			Name:   "breakout",
			Market: "BTC-PERP",
			Params: map[string]float64{
				"don_break": 20,
				"don_exit":  10,
				"atr_len":   20,
			},
			BarIntervalHours: 24,
		},
		Risk: RiskConfig{
			PerTradeRiskPct:      1.0,
			MaxDailyLossR:        5.0,
			MaxConcurrent:        3,
			MaxPositionSizeUSD:   100000,
			MaxExposurePerMarket: 50,
		},
		Research: ResearchConfig{
			TrainDays:   90,
			TestDays:    30,
			StepDays:    30,
			Simulations: 1000,
			Metric:      "oos_sharpe",
			TopN:        5,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
