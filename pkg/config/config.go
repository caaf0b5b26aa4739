package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	GigaChat   GigaChatConfig
	Embedding  EmbeddingConfig
	Ingest     IngestConfig
	RAG        RAGConfig
	News       NewsConfig
	MarketData MarketDataConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type EmbeddingConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	// RatePerSecond caps outgoing embedding requests; 0 disables the limiter.
	RatePerSecond int
}

type IngestConfig struct {
	// SourceDir is the root of the downloaded document tree. The
	// quarantine subdirectory lives underneath it.
	SourceDir    string
	TickerSuffix string
	ChunkSize    int
	ChunkOverlap int
	Workers      int
}

type MarketDataConfig struct {
	// BaseURL points at a fundamentals timeseries endpoint; the symbol
	// is appended as the final path segment.
	BaseURL        string
	HistoryWindow  time.Duration
	RequestTimeout time.Duration
}

type NewsConfig struct {
	// FeedURL is the RSS search endpoint queried per ticker.
	FeedURL        string
	MaxArticles    int
	RequestTimeout time.Duration
}

type RAGConfig struct {
	// RecencyWindow is applied when a query carries no explicit year.
	RecencyWindow time.Duration
	FactChunks    int
	SummaryChunks int
}

func Load() (*Config, error) {
	// The .env file is optional; environment variables alone are fine
	// for Docker/K8s deployments.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	dimensions, _ := strconv.Atoi(getEnv("EMBEDDING_DIMENSIONS", "1024"))
	ratePerSec, _ := strconv.Atoi(getEnv("EMBEDDING_RATE_PER_SECOND", "0"))
	chunkSize, _ := strconv.Atoi(getEnv("INGEST_CHUNK_SIZE", "300"))
	chunkOverlap, _ := strconv.Atoi(getEnv("INGEST_CHUNK_OVERLAP", "50"))
	workers, _ := strconv.Atoi(getEnv("INGEST_WORKERS", "8"))
	newsMax, _ := strconv.Atoi(getEnv("NEWS_MAX_ARTICLES", "10"))
	newsTimeout, _ := strconv.Atoi(getEnv("NEWS_REQUEST_TIMEOUT", "20"))
	historyYears, _ := strconv.Atoi(getEnv("MARKET_DATA_HISTORY_YEARS", "5"))
	marketTimeout, _ := strconv.Atoi(getEnv("MARKET_DATA_REQUEST_TIMEOUT", "30"))
	recencyDays, _ := strconv.Atoi(getEnv("RAG_RECENCY_WINDOW_DAYS", "730"))
	factChunks, _ := strconv.Atoi(getEnv("RAG_FACT_CHUNKS", "5"))
	summaryChunks, _ := strconv.Atoi(getEnv("RAG_SUMMARY_CHUNKS", "20"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finsightai"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Embedding: EmbeddingConfig{
			BaseURL:       getEnv("EMBEDDING_BASE_URL", "http://localhost:11434/v1"),
			APIKey:        getEnv("EMBEDDING_API_KEY", ""),
			Model:         getEnv("EMBEDDING_MODEL", "mxbai-embed-large"),
			Dimensions:    dimensions,
			RatePerSecond: ratePerSec,
		},
		Ingest: IngestConfig{
			SourceDir:    getEnv("SOURCE_DOCUMENTS_DIR", "financial_reports"),
			TickerSuffix: getEnv("TICKER_SUFFIX", ".NS"),
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
			Workers:      workers,
		},
		MarketData: MarketDataConfig{
			BaseURL:        getEnv("MARKET_DATA_BASE_URL", "https://query1.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries"),
			HistoryWindow:  time.Duration(historyYears) * 365 * 24 * time.Hour,
			RequestTimeout: time.Duration(marketTimeout) * time.Second,
		},
		News: NewsConfig{
			FeedURL:        getEnv("NEWS_FEED_URL", "https://news.google.com/rss/search"),
			MaxArticles:    newsMax,
			RequestTimeout: time.Duration(newsTimeout) * time.Second,
		},
		RAG: RAGConfig{
			RecencyWindow: time.Duration(recencyDays) * 24 * time.Hour,
			FactChunks:    factChunks,
			SummaryChunks: summaryChunks,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
