package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env-required:"true" env-default:"production"`
	PGSQL      PQSQL      `yaml:"pgsql" env-required:"true"`
	HTTPServer HTTPServer `yaml:"http_server" env-required:"true"`
	MinIO      MinIO      `yaml:"minio" env-required:"true"`
	Media      Media      `yaml:"media"`
	Redis      Redis      `yaml:"redis"`
	Gemini     Gemini     `yaml:"gemini"`
	JWTSecret  string     `yaml:"jwt_secret" env-required:"true" env-default:"super_secret_key"`
}

type HTTPServer struct {
	Address string `yaml:"address" env-required:"true" env-default:"localhost:8080"`
}

type PQSQL struct {
	Host     string `yaml:"host" env-required:"true" env-default:"localhost"`
	Port     string `yaml:"port" env-required:"true" env-default:"5432"`
	User     string `yaml:"user" env-required:"true" env-default:"postgres"`
	Password string `yaml:"password" env-required:"true" env-default:"password"`
	DBName   string `yaml:"dbname" env-required:"true" env-default:"profolia_db"`
	SSLMode  string `yaml:"sslmode" env-required:"true" env-default:"disable"`
}

type MinIO struct {
	Endpoint        string `yaml:"endpoint" env-required:"true" env-default:"localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env-required:"true"`
	SecretAccessKey string `yaml:"secret_access_key" env-required:"true"`
	BucketName      string `yaml:"bucket_name" env-default:"profolia-media"`
	UseSSL          bool   `yaml:"use_ssl" env-default:"false"`
}

type Media struct {
	// MaxFileSize caps a single file or archive entry, in bytes (50 MB).
	MaxFileSize int64 `yaml:"max_file_size" env-default:"52428800"`
	// MaxArchiveSize caps an uploaded archive, in bytes (500 MB).
	MaxArchiveSize int64 `yaml:"max_archive_size" env-default:"524288000"`
	// UploadWorkers bounds concurrent object uploads per archive.
	UploadWorkers int `yaml:"upload_workers" env-default:"4"`
	// PresignedURLTTL is the lifetime of presigned URLs, in seconds.
	PresignedURLTTL int `yaml:"presigned_url_ttl" env-default:"900"`
}

type Redis struct {
	Address  string `yaml:"address" env-default:"localhost:6379"`
	Password string `yaml:"password" env-default:""`
	DB       int    `yaml:"db" env-default:"0"`
}

type Gemini struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env-default:"gemini-2.5-flash"`
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist at path: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	return &cfg
}
