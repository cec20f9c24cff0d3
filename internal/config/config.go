package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"shopfront/internal/pricing"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Charges   ChargesConfig
	Pricing   PricingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	RequestsPerWindow int
	WindowSeconds     int
}

type ChargesConfig struct {
	ServiceRate float64 // compulsory service charge on the subtotal
	TaxRate     float64 // tax on subtotal plus service charge
}

type PricingConfig struct {
	// Tiers is an ordered "bound:rate" list; an empty bound marks the
	// open-ended last tier, e.g. "0.00:0.05,0.10:0.08,0.20:0.12,0.30:0.17,:0.20".
	Tiers string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("SERVICE_CHARGE_RATE", 0.10)
	viper.SetDefault("TAX_RATE", 0.09)
	viper.SetDefault("MARKUP_TIERS", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:     viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Charges: ChargesConfig{
			ServiceRate: viper.GetFloat64("SERVICE_CHARGE_RATE"),
			TaxRate:     viper.GetFloat64("TAX_RATE"),
		},
		Pricing: PricingConfig{
			Tiers: viper.GetString("MARKUP_TIERS"),
		},
	}
}

// MarkupTiers parses the configured tier table. An empty or malformed value
// falls back to the built-in default tiers.
func (c *Config) MarkupTiers() pricing.TierTable {
	raw := strings.TrimSpace(c.Pricing.Tiers)
	if raw == "" {
		return pricing.DefaultTiers()
	}

	var tiers pricing.TierTable
	for _, part := range strings.Split(raw, ",") {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(fields) != 2 {
			log.Printf("Warning: malformed markup tier %q, using default tiers", part)
			return pricing.DefaultTiers()
		}

		rate, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			log.Printf("Warning: malformed markup rate %q, using default tiers", fields[1])
			return pricing.DefaultTiers()
		}

		tier := pricing.Tier{Rate: rate}
		if bound := strings.TrimSpace(fields[0]); bound != "" {
			upper, err := strconv.ParseFloat(bound, 64)
			if err != nil {
				log.Printf("Warning: malformed markup bound %q, using default tiers", bound)
				return pricing.DefaultTiers()
			}
			tier.UpperBound = &upper
		}
		tiers = append(tiers, tier)
	}
	return tiers
}
