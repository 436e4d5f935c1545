package config

import (
	"os"
	"strconv"
)

// FraudConfig holds the anomaly scorer thresholds. Defaults match the
// documented configuration; every value can be overridden via env.
type FraudConfig struct {
	VelocityWindowMinutes    int     // trailing window for the velocity check
	MaxTransactionsPerWindow int     // velocity fires at this count
	AmountStdDevThreshold    float64 // z-score above this is suspicious
	MinCustomerTransactions  int     // minimum history for the amount check
}

// AnalyticsConfig holds the aggregation engine thresholds.
type AnalyticsConfig struct {
	LowStockThreshold    int     // stock at or below this is low
	SuspiciousMultiplier float64 // amount >= multiplier * ledger mean is suspicious
}

type Config struct {
	Port     string
	LogLevel string

	Fraud     FraudConfig
	Analytics AnalyticsConfig
}

func Load() *Config {
	return &Config{
		Port:     envStr("PORT", "3000"),
		LogLevel: envStr("LOG_LEVEL", "info"),
		Fraud: FraudConfig{
			VelocityWindowMinutes:    envInt("FRAUD_VELOCITY_WINDOW_MINUTES", 60),
			MaxTransactionsPerWindow: envInt("FRAUD_MAX_TRANSACTIONS_PER_WINDOW", 5),
			AmountStdDevThreshold:    envFloat("FRAUD_STD_DEV_THRESHOLD", 2.0),
			MinCustomerTransactions:  envInt("FRAUD_MIN_CUSTOMER_TRANSACTIONS", 3),
		},
		Analytics: AnalyticsConfig{
			LowStockThreshold:    envInt("LOW_STOCK_THRESHOLD", 10),
			SuspiciousMultiplier: envFloat("SUSPICIOUS_AMOUNT_MULTIPLIER", 3.0),
		},
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
