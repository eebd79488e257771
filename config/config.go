package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries every setting the server needs. It is built once in main
// and handed to the components that use it; nothing reads the environment
// after startup.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	MongoURI string `envconfig:"MONGO_URI" required:"true"`
	MongoDB  string `envconfig:"MONGO_DB" default:"eventora"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"1h"`

	SMTPHost string `envconfig:"SMTP_HOST"`
	SMTPPort string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USER"`
	SMTPPass string `envconfig:"SMTP_PASS"`

	OTPExpiry time.Duration `envconfig:"OTP_EXPIRY" default:"10m"`

	ProfileImageDir string `envconfig:"PROFILE_IMAGE_DIR" default:"usersprofilepics"`
	EventImageDir   string `envconfig:"EVENT_IMAGE_DIR" default:"eventimages"`
	MaxImageBytes   int64  `envconfig:"MAX_IMAGE_BYTES" default:"2097152"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
