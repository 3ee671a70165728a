package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del simulador.
type Config struct {
	Sim     SimConfig     `yaml:"sim"`
	Engine  EngineConfig  `yaml:"engine"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// SimConfig controla capital y captura de datos.
type SimConfig struct {
	InitialCash       float64  `yaml:"initial_cash"`       // capital inicial por estrategia
	SnapshotLimit     int      `yaml:"snapshot_limit"`     // mercados por snapshot
	SnapshotRetention int      `yaml:"snapshot_retention"` // snapshots retenidos
	HistoryLimit      int      `yaml:"history_limit"`      // mercados resueltos a descargar
	CaseStudySlugs    []string `yaml:"case_study_slugs"`   // corpus curado del case study
}

// EngineConfig son los thresholds y sizing del engine. Un objeto explícito
// en vez de constantes globales: los tests parametrizan sin tocar globals.
type EngineConfig struct {
	// Detección de señales
	PriceSpikeThreshold float64 `yaml:"price_spike_threshold"` // |Δprecio| para spike
	VolumeSpikeRatio    float64 `yaml:"volume_spike_ratio"`    // (ratio-1) para spike de volumen

	// momentum / contrarian
	TrendSizePct float64 `yaml:"trend_size_pct"`
	TrendMaxBet  float64 `yaml:"trend_max_bet"`

	// status_quo
	StatusQuoSizePct float64 `yaml:"status_quo_size_pct"`
	StatusQuoMinYes  float64 `yaml:"status_quo_min_yes"`
	StatusQuoMaxYes  float64 `yaml:"status_quo_max_yes"`

	// cheap_contracts (lottery sizing)
	CheapSizePct   float64 `yaml:"cheap_size_pct"`
	CheapMinBet    float64 `yaml:"cheap_min_bet"`
	CheapMaxBet    float64 `yaml:"cheap_max_bet"`
	CheapMaxPrice  float64 `yaml:"cheap_max_price"`
	CheapPriceFloor float64 `yaml:"cheap_price_floor"`

	// arb proxy: heurística de banda de precio + liquidez con spread sintético.
	// NO es detección real de arbitraje cross-venue.
	ArbSizePct      float64 `yaml:"arb_size_pct"`
	ArbMaxLiquidity float64 `yaml:"arb_max_liquidity"`
	ArbBandLow      float64 `yaml:"arb_band_low"`
	ArbBandHigh     float64 `yaml:"arb_band_high"`
	ArbEdge         float64 `yaml:"arb_edge"` // spread sintético total (2%)

	// banda arb en backtest (más ancha, con filtro de volumen)
	BacktestArbLow    float64 `yaml:"backtest_arb_low"`
	BacktestArbHigh   float64 `yaml:"backtest_arb_high"`
	BacktestArbMinVol float64 `yaml:"backtest_arb_min_vol"`
	BacktestArbMaxVol float64 `yaml:"backtest_arb_max_vol"`

	// Filtros de precio generales
	PriceFloor   float64 `yaml:"price_floor"`   // proposals con precio ≤ floor se descartan
	PriceCeiling float64 `yaml:"price_ceiling"` // ídem con precio ≥ ceiling
}

// APIConfig contiene el base URL de la API de mercados.
type APIConfig struct {
	GammaBase string `yaml:"gamma_base"`
}

// StorageConfig controla dónde se persiste el estado.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el .env si existe.
// Si el archivo no existe, devuelve la configuración por defecto.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// sin archivo: todo por defecto
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// DefaultEngine devuelve la configuración de engine por defecto,
// útil para tests y para setDefaults.
func DefaultEngine() EngineConfig {
	return EngineConfig{
		PriceSpikeThreshold: 0.10,
		VolumeSpikeRatio:    2.0,

		TrendSizePct: 0.05,
		TrendMaxBet:  200,

		StatusQuoSizePct: 0.05,
		StatusQuoMinYes:  0.10,
		StatusQuoMaxYes:  0.40,

		CheapSizePct:    0.01,
		CheapMinBet:     20,
		CheapMaxBet:     100,
		CheapMaxPrice:   0.05,
		CheapPriceFloor: 0.0001,

		ArbSizePct:      0.03,
		ArbMaxLiquidity: 5000,
		ArbBandLow:      0.45,
		ArbBandHigh:     0.55,
		ArbEdge:         0.02,

		BacktestArbLow:    0.40,
		BacktestArbHigh:   0.60,
		BacktestArbMinVol: 5000,
		BacktestArbMaxVol: 50000,

		PriceFloor:   0.01,
		PriceCeiling: 0.99,
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si existen.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYSIM_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Sim.InitialCash <= 0 {
		cfg.Sim.InitialCash = 2000
	}
	if cfg.Sim.SnapshotLimit <= 0 {
		cfg.Sim.SnapshotLimit = 100
	}
	if cfg.Sim.SnapshotRetention <= 0 {
		cfg.Sim.SnapshotRetention = 48
	}
	if cfg.Sim.HistoryLimit <= 0 {
		cfg.Sim.HistoryLimit = 500
	}

	def := DefaultEngine()
	e := &cfg.Engine
	if e.PriceSpikeThreshold <= 0 {
		e.PriceSpikeThreshold = def.PriceSpikeThreshold
	}
	if e.VolumeSpikeRatio <= 0 {
		e.VolumeSpikeRatio = def.VolumeSpikeRatio
	}
	if e.TrendSizePct <= 0 {
		e.TrendSizePct = def.TrendSizePct
	}
	if e.TrendMaxBet <= 0 {
		e.TrendMaxBet = def.TrendMaxBet
	}
	if e.StatusQuoSizePct <= 0 {
		e.StatusQuoSizePct = def.StatusQuoSizePct
	}
	if e.StatusQuoMinYes <= 0 {
		e.StatusQuoMinYes = def.StatusQuoMinYes
	}
	if e.StatusQuoMaxYes <= 0 {
		e.StatusQuoMaxYes = def.StatusQuoMaxYes
	}
	if e.CheapSizePct <= 0 {
		e.CheapSizePct = def.CheapSizePct
	}
	if e.CheapMinBet <= 0 {
		e.CheapMinBet = def.CheapMinBet
	}
	if e.CheapMaxBet <= 0 {
		e.CheapMaxBet = def.CheapMaxBet
	}
	if e.CheapMaxPrice <= 0 {
		e.CheapMaxPrice = def.CheapMaxPrice
	}
	if e.CheapPriceFloor <= 0 {
		e.CheapPriceFloor = def.CheapPriceFloor
	}
	if e.ArbSizePct <= 0 {
		e.ArbSizePct = def.ArbSizePct
	}
	if e.ArbMaxLiquidity <= 0 {
		e.ArbMaxLiquidity = def.ArbMaxLiquidity
	}
	if e.ArbBandLow <= 0 {
		e.ArbBandLow = def.ArbBandLow
	}
	if e.ArbBandHigh <= 0 {
		e.ArbBandHigh = def.ArbBandHigh
	}
	if e.ArbEdge <= 0 {
		e.ArbEdge = def.ArbEdge
	}
	if e.BacktestArbLow <= 0 {
		e.BacktestArbLow = def.BacktestArbLow
	}
	if e.BacktestArbHigh <= 0 {
		e.BacktestArbHigh = def.BacktestArbHigh
	}
	if e.BacktestArbMinVol <= 0 {
		e.BacktestArbMinVol = def.BacktestArbMinVol
	}
	if e.BacktestArbMaxVol <= 0 {
		e.BacktestArbMaxVol = def.BacktestArbMaxVol
	}
	if e.PriceFloor <= 0 {
		e.PriceFloor = def.PriceFloor
	}
	if e.PriceCeiling <= 0 {
		e.PriceCeiling = def.PriceCeiling
	}

	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polysim.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
