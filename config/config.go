package config

import (
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config carries everything the CLI and the feedback worker need. Values come
// from the environment, optionally seeded from a .env file.
type Config struct {
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017/"`
	MongoDatabase string `env:"MONGO_DB" envDefault:"dripmax"`

	AWSRegion string `env:"AWS_REGION" envDefault:"eu-west-1"`
	AWSBucket string `env:"AWS_BUCKET_NAME" envDefault:"dripmax-images"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	JWTSecret string `env:"JWT_SECRET"`

	// Submission workflow tuning.
	MaxUploadAttempts int           `env:"MAX_UPLOAD_ATTEMPTS" envDefault:"3"`
	UploadBackoff     time.Duration `env:"UPLOAD_BACKOFF" envDefault:"2s"`
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	MaxPollAttempts   int           `env:"MAX_POLL_ATTEMPTS" envDefault:"30"`
	MaxImageDimension int           `env:"MAX_IMAGE_DIMENSION" envDefault:"1080"`
	JPEGQuality       int           `env:"JPEG_QUALITY" envDefault:"80"`

	// Feedback worker tuning.
	WorkerScanInterval time.Duration `env:"WORKER_SCAN_INTERVAL" envDefault:"5s"`
	WorkerBatchSize    int64         `env:"WORKER_BATCH_SIZE" envDefault:"10"`
}

// Load reads a .env file when present and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
