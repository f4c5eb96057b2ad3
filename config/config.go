package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/RyanBlaney/sonido-labels/logging"
)

// Config carries the runtime settings for the label pipeline.
type Config struct {
	Dataset   DatasetConfig   `json:"dataset"`
	Agreement AgreementConfig `json:"agreement"`
	Chroma    ChromaConfig    `json:"chroma"`
	Server    ServerConfig    `json:"server"`
	Store     StoreConfig     `json:"store"`
}

type DatasetConfig struct {
	// Directory walk settings
	Extensions []string `json:"extensions"` // Audio extensions to index

	// Train/validation split settings
	TrainRatio float64 `json:"train_ratio"`
	Seed       int64   `json:"seed"`
}

type AgreementConfig struct {
	TopK                int     `json:"top_k"`                // Overlap window for backend comparison
	ConfidenceThreshold float64 `json:"confidence_threshold"` // Model score needed for ground truth pass
	PeakThreshold       float64 `json:"peak_threshold"`       // Chroma energy needed for ground truth pass
}

type ChromaConfig struct {
	SampleRate int     `json:"sample_rate"`
	TuningFreq float64 `json:"tuning_freq"` // A4 reference frequency
	WindowSize int     `json:"window_size"`
	HopSize    int     `json:"hop_size"`
}

type ServerConfig struct {
	Addr string `json:"addr"`
}

type StoreConfig struct {
	DSN string `json:"dsn"` // SQLite data source name
}

// DefaultConfig returns the settings the pipeline ships with.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Extensions: []string{".wav", ".mp3", ".flac", ".ogg"},
			TrainRatio: 0.8,
			Seed:       42,
		},
		Agreement: AgreementConfig{
			TopK:                5,
			ConfidenceThreshold: 0.3,
			PeakThreshold:       0.1,
		},
		Chroma: ChromaConfig{
			SampleRate: 22050,
			TuningFreq: 440.0,
			WindowSize: 2048,
			HopSize:    512,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			DSN: "sonido_labels.db",
		},
	}
}

// Load builds a config from the defaults, a .env file if one exists,
// and SONIDO_LABELS_* environment variables, in that order.
func Load() *Config {
	_ = godotenv.Load()
	return loadFromEnv(DefaultConfig())
}

func loadFromEnv(cfg *Config) *Config {
	logger := logging.WithFields(logging.Fields{"component": "config"})

	if v := os.Getenv("SONIDO_LABELS_TRAIN_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Dataset.TrainRatio = ratio
		} else {
			logger.Warn("ignoring invalid SONIDO_LABELS_TRAIN_RATIO", logging.Fields{"value": v})
		}
	}
	if v := os.Getenv("SONIDO_LABELS_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Dataset.Seed = seed
		} else {
			logger.Warn("ignoring invalid SONIDO_LABELS_SEED", logging.Fields{"value": v})
		}
	}
	if v := os.Getenv("SONIDO_LABELS_TOP_K"); v != "" {
		if topK, err := strconv.Atoi(v); err == nil {
			cfg.Agreement.TopK = topK
		} else {
			logger.Warn("ignoring invalid SONIDO_LABELS_TOP_K", logging.Fields{"value": v})
		}
	}
	if v := os.Getenv("SONIDO_LABELS_CONFIDENCE_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Agreement.ConfidenceThreshold = threshold
		} else {
			logger.Warn("ignoring invalid SONIDO_LABELS_CONFIDENCE_THRESHOLD", logging.Fields{"value": v})
		}
	}
	if v := os.Getenv("SONIDO_LABELS_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			cfg.Chroma.SampleRate = rate
		} else {
			logger.Warn("ignoring invalid SONIDO_LABELS_SAMPLE_RATE", logging.Fields{"value": v})
		}
	}
	if v := os.Getenv("SONIDO_LABELS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SONIDO_LABELS_DB"); v != "" {
		cfg.Store.DSN = v
	}

	return cfg
}
