package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"prod"`
	Log        Log    `yaml:"log"`
	HTTPServer `yaml:"http_server"`
	Database   Database `yaml:"database"`
	Pricing    Pricing  `yaml:"pricing"`
	Currency   Currency `yaml:"currency"`
	Redis      Redis    `yaml:"redis"`
	Minio      Minio    `yaml:"minio"`
	Auth       Auth     `yaml:"auth"`
}

// Log: пустые level и format выбираются по env, пустой error_file отключает файл ошибок.
type Log struct {
	Level     string `yaml:"level" env:"LOG_LEVEL"`
	Format    string `yaml:"format" env:"LOG_FORMAT"`
	ErrorFile string `yaml:"error_file" env:"LOG_ERROR_FILE" env-default:"errors.log"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout        time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env-default:"http://localhost:5173"`
}

type Database struct {
	User      string        `yaml:"user" env:"DB_USER" env-required:"true"`
	Password  string        `yaml:"password" env:"DB_PASSWORD"`
	Host      string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port      int           `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Name      string        `yaml:"name" env:"DB_NAME" env-required:"true"`
	Migrate   bool          `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
	MaxOpen   int           `yaml:"max_open_conns" env-default:"20"`
	ConnRetry time.Duration `yaml:"connect_retry" env-default:"1m"`
}

type Pricing struct {
	// Engine: spreadsheet — шаблоны xlsx, native — формулы в коде без файла.
	Engine        string `yaml:"engine" env:"PRICING_ENGINE" env-default:"spreadsheet"`
	TemplatesDir  string `yaml:"templates_dir" env:"TEMPLATES_DIR" env-default:"./templates"`
	UploadsDir    string `yaml:"uploads_dir" env:"UPLOADS_DIR" env-default:"./uploads"`
	PublicBaseURL string `yaml:"public_base_url" env:"PUBLIC_BASE_URL" env-default:"http://localhost:4001"`
	Storage       string `yaml:"storage" env:"ARTIFACT_STORAGE" env-default:"disk"`
}

type Currency struct {
	URL        string        `yaml:"url" env:"CBR_URL" env-default:"https://www.cbr-xml-daily.ru/daily_json.js"`
	Timeout    time.Duration `yaml:"timeout" env-default:"5s"`
	MaxRetries uint64        `yaml:"max_retries" env-default:"3"`
	CacheTTL   time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"orders"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"12h"`
}

const defaultPath = "./config/local.yaml"

func MustConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

// Load reads the yaml file at path, env variables override it.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
