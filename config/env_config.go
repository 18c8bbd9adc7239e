package config

import (
	"strings"

	"github.com/spf13/viper"
)

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
		SSLMode  string
	}
	JWT struct {
		SecretKey string
		Algorithm string
		Expire    int
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		UseSSL       bool
		ReportBucket string
	}
	ExternalService struct {
		AuthorizationServiceURL string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
		Insecure     bool
	}
	Cache struct {
		TTLSeconds int
	}
	Report struct {
		RetentionDays int
	}
	PrivateKey string

	Environment struct {
		Mode  string
		Group string
	}
	HTTPPort string
}

func LoadEnvConfig() *EnvConfig {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	var config EnvConfig

	// Postgres
	config.Postgres.HOST = v.GetString("PGPOOL_HOST")
	config.Postgres.Database = v.GetString("PGPOOL_DB")
	config.Postgres.Username = v.GetString("PGPOOL_USER")
	config.Postgres.Password = v.GetString("PGPOOL_PASSWORD")
	config.Postgres.Port = v.GetString("PGPOOL_PORT")
	config.Postgres.SSLMode = v.GetString("PGPOOL_SSLMODE")

	// JWT
	config.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	config.JWT.Algorithm = v.GetString("JWT_ALGORITHM")
	config.JWT.Expire = v.GetInt("JWT_EXPIRE")

	config.CORS.AllowDomains = v.GetString("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = v.GetString("GLOBAL_DOMAIN")

	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.Database = v.GetInt("REDIS_DB")
	config.Redis.RedisHost = v.GetString("REDIS_HOST")
	config.Redis.RedisPort = v.GetString("REDIS_PORT")

	// RabbitMQ
	config.RabbitMQ.Host = v.GetString("RABBITMQ_HOST")
	config.RabbitMQ.Port = v.GetString("RABBITMQ_PORT")
	config.RabbitMQ.Username = v.GetString("RABBITMQ_USER")
	config.RabbitMQ.Password = v.GetString("RABBITMQ_PASSWORD")

	config.Minio.Endpoint = v.GetString("MINIO_ENDPOINT")
	config.Minio.RootUser = v.GetString("MINIO_ROOT_USER")
	config.Minio.RootPassword = v.GetString("MINIO_ROOT_PASSWORD")
	config.Minio.UseSSL = v.GetBool("MINIO_USE_SSL")
	config.Minio.ReportBucket = v.GetString("REPORT_BUCKET")

	config.PrivateKey = v.GetString("PRIVATE_KEY")
	config.ExternalService.AuthorizationServiceURL = v.GetString("AUTHORIZATION_SERVICE_URL")

	// Grafana/OpenTelemetry
	config.Grafana.OTLPEndpoint = stripScheme(v.GetString("GRAFANA_OTLP_ENDPOINT"))
	config.Grafana.ServiceName = v.GetString("SERVICE_NAME")
	config.Grafana.Insecure = v.GetBool("GRAFANA_OTLP_INSECURE")

	config.Cache.TTLSeconds = v.GetInt("CACHE_TTL_SECONDS")
	config.Report.RetentionDays = v.GetInt("REPORT_RETENTION_DAYS")

	config.Environment.Mode = v.GetString("DEPLOY_ENV")
	config.Environment.Group = v.GetString("GROUP_NAME")
	config.HTTPPort = v.GetString("HTTP_PORT")

	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGPOOL_HOST", "localhost")
	v.SetDefault("PGPOOL_PORT", "5432")
	v.SetDefault("PGPOOL_SSLMODE", "disable")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_EXPIRE", 3600*24*7)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("REPORT_BUCKET", "inventory-reports")
	v.SetDefault("GRAFANA_OTLP_ENDPOINT", "https://grafana.gauas.online")
	v.SetDefault("SERVICE_NAME", "gau-inventory-service")
	v.SetDefault("CACHE_TTL_SECONDS", 60)
	v.SetDefault("REPORT_RETENTION_DAYS", 30)
	v.SetDefault("DEPLOY_ENV", "development")
	v.SetDefault("GROUP_NAME", "local")
	v.SetDefault("HTTP_PORT", "8080")
}

// stripScheme removes the protocol so the OTLP exporters don't get it twice.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimPrefix(endpoint, "http://")
}
