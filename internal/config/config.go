package config

import (
	"time"

	"github.com/spf13/viper"
)

// Top list modes, resolving whether the "top ten" shelf is the curated
// constant list or computed from interaction frequency.
const (
	TopListCurated   = "curated"
	TopListFrequency = "frequency"
)

// Config holds all process configuration.
type Config struct {
	ListenAddr string

	CatalogPath         string
	RecommendationsPath string
	SimilarityPath      string
	InteractionsPath    string
	UsersPath           string
	CoverCachePath      string

	GoogleBooksAPIKey string
	LookupTimeout     time.Duration
	LookupRate        float64

	TopListMode string
	TopListSize int

	Debug bool
}

// Load reads configuration from an optional config file and from the
// environment (BOOKSMT_ prefix), with defaults for everything.
func Load() (*Config, error) {
	viper.SetDefault("ListenAddr", ":8080")
	viper.SetDefault("CatalogPath", "./data/items.csv")
	viper.SetDefault("RecommendationsPath", "./data/top_recs.csv")
	viper.SetDefault("SimilarityPath", "./data/similar.csv")
	viper.SetDefault("InteractionsPath", "./data/interactions.csv")
	viper.SetDefault("UsersPath", "./data/users.csv")
	viper.SetDefault("CoverCachePath", "./data/covers.db")
	viper.SetDefault("GoogleBooksAPIKey", "")
	viper.SetDefault("LookupTimeout", 10*time.Second)
	viper.SetDefault("LookupRate", 2.0)
	viper.SetDefault("TopListMode", TopListCurated)
	viper.SetDefault("TopListSize", 10)
	viper.SetDefault("Debug", false)

	viper.SetConfigName("booksmt")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/booksmt")

	viper.SetEnvPrefix("BOOKSMT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		ListenAddr:          viper.GetString("ListenAddr"),
		CatalogPath:         viper.GetString("CatalogPath"),
		RecommendationsPath: viper.GetString("RecommendationsPath"),
		SimilarityPath:      viper.GetString("SimilarityPath"),
		InteractionsPath:    viper.GetString("InteractionsPath"),
		UsersPath:           viper.GetString("UsersPath"),
		CoverCachePath:      viper.GetString("CoverCachePath"),
		GoogleBooksAPIKey:   viper.GetString("GoogleBooksAPIKey"),
		LookupTimeout:       viper.GetDuration("LookupTimeout"),
		LookupRate:          viper.GetFloat64("LookupRate"),
		TopListMode:         viper.GetString("TopListMode"),
		TopListSize:         viper.GetInt("TopListSize"),
		Debug:               viper.GetBool("Debug"),
	}
	return cfg, nil
}
