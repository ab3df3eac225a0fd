package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Corpus    CorpusConfig
	Ledger    LedgerConfig
	Catalog   CatalogConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Retrieval RetrievalConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

// CorpusConfig points at the PostgreSQL database holding the pgvector
// Q&A corpus table.
type CorpusConfig struct {
	DSN string
}

type LedgerConfig struct {
	Path string
}

type CatalogConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Password    string
	DB          int
	StatsTTLSec int
}

type LLMConfig struct {
	EmbeddingAPIKey  string
	EmbeddingModel   string
	EmbeddingDim     int
	GenerationAPIKey string
	GenerationModel  string
	Temperature      float32
	MaxTokens        int
}

type RetrievalConfig struct {
	TopK int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/brim-cs")

	viper.SetEnvPrefix("BRIM_CS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about. The required
	// settings have no defaults, so their env overrides need explicit binds.
	for _, key := range []string{"corpus.dsn", "llm.embeddingApiKey", "llm.generationApiKey"} {
		viper.BindEnv(key)
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate reports every missing required setting at once so an operator can
// fix a deployment in a single pass. Startup halts on any of these.
func (c *Config) Validate() error {
	var missing []string

	if c.Corpus.DSN == "" {
		missing = append(missing, "corpus.dsn (PostgreSQL connection string for the Q&A corpus)")
	}
	if c.LLM.EmbeddingAPIKey == "" {
		missing = append(missing, "llm.embeddingApiKey (embedding service credential)")
	}
	if c.LLM.GenerationAPIKey == "" {
		missing = append(missing, "llm.generationApiKey (generation service credential)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, "; "))
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("ledger.path", "./data/brimcs.db")

	viper.SetDefault("catalog.path", "./brim_product_database.json")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.statsTTLSec", 60)

	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.embeddingDim", 1536)
	viper.SetDefault("llm.generationModel", "gpt-4")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 2000)

	viper.SetDefault("retrieval.topK", 3)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
