package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Reranker RerankerConfig `yaml:"reranker"`
	RAG      RAGConfig      `yaml:"rag"`
	Upload   UploadConfig   `yaml:"upload"`
	Chat     ChatConfig     `yaml:"chat"`
	Titles   TitlesConfig   `yaml:"titles"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "mysql".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"`
}

type QdrantConfig struct {
	Host            string  `yaml:"host"`
	Port            int     `yaml:"port"`
	APIKey          string  `yaml:"api_key"`
	UseTLS          bool    `yaml:"use_tls"`
	LegalCollection string  `yaml:"legal_collection"`
	UserCollection  string  `yaml:"user_collection"`
	ScoreThreshold  float32 `yaml:"score_threshold"`
	VectorDim       uint64  `yaml:"vector_dim"`
}

type OllamaConfig struct {
	Host               string `yaml:"host"`
	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingBatchSize int    `yaml:"embedding_batch_size"`
}

type RerankerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RAGConfig struct {
	TopK        int     `yaml:"top_k"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type UploadConfig struct {
	Dir           string `yaml:"dir"`
	MaxFileSizeMB int64  `yaml:"max_file_size_mb"`
}

type ChatConfig struct {
	// PersistSources pins the citation snapshot of every assistant message for
	// audit replay. When false, history returns messages without sources and
	// citations are recomputed from the live index on demand.
	PersistSources bool `yaml:"persist_sources"`
}

type TitlesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// Cfg is the process-wide configuration, populated once by Load.
var Cfg *Config

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/database/legal_rag.db",
		},
		Qdrant: QdrantConfig{
			Host:            "localhost",
			Port:            6334,
			LegalCollection: "legal_rag_hybrid",
			UserCollection:  "user_docs_private",
			ScoreThreshold:  0.3,
			VectorDim:       768,
		},
		Ollama: OllamaConfig{
			Host:               "http://localhost:11434",
			EmbeddingModel:     "nomic-embed-text",
			EmbeddingBatchSize: 32,
		},
		Reranker: RerankerConfig{
			Enabled:        true,
			TimeoutSeconds: 30,
		},
		RAG: RAGConfig{
			TopK:        10,
			Temperature: 0.1,
			MaxTokens:   2048,
		},
		Upload: UploadConfig{
			Dir:           "data/uploads",
			MaxFileSizeMB: 10,
		},
		Chat: ChatConfig{
			PersistSources: true,
		},
		Titles: TitlesConfig{
			Enabled: true,
		},
	}
}

// Load reads the YAML config at path into Cfg, then applies secret overrides
// from the environment. A missing file leaves the defaults in place.
func Load(path string) error {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		cfg.Qdrant.APIKey = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Ollama.Host = v
	}

	Cfg = cfg
	return nil
}

func MustLoad(path string) {
	if err := Load(path); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}
