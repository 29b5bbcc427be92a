package config

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Settings come from the environment of the function host (or the pod).
// A local .env file is honoured so the service can be run the same way
// outside of it.

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	IsLocalDev    bool   `mapstructure:"IS_LOCAL_DEV"`
	DocumentStore string `mapstructure:"DOCUMENT_STORE"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	EmployeeContainerName   string `mapstructure:"EMPLOYEE_CONTAINER_NAME"`
	AttendanceContainerName string `mapstructure:"ATTENDANCE_CONTAINER_NAME"`

	BlobStore            string `mapstructure:"BLOB_STORE"`
	StorageContainerName string `mapstructure:"STORAGE_CONTAINER_NAME"`
	BlobPublicBaseURL    string `mapstructure:"BLOB_PUBLIC_BASE_URL"`

	AWSRegion              string `mapstructure:"AWS_REGION"`
	AWSEndpoint            string `mapstructure:"AWS_ENDPOINT"`
	EmployeeEventsQueueURL string `mapstructure:"EMPLOYEE_EVENTS_QUEUE_URL"`

	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

const (
	DocumentStorePostgres = "postgres"
	DocumentStoreMongo    = "mongo"
	DocumentStoreMemory   = "memory"

	BlobStoreS3     = "s3"
	BlobStoreMemory = "memory"
)

// LoadConfig reads configuration from a .env file and environment variables.
// Environment variables win over the file.
func LoadConfig() (config Config, err error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables only")
	}

	v := viper.New()
	setDefaults(v)

	// Read in environment variables that match the keys. An empty value
	// counts, so OTEL_EXPORTER_OTLP_ENDPOINT= switches traces to stdout.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("DOCUMENT_STORE", DocumentStorePostgres)
	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "registry_db")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DATABASE", "registry")
	v.SetDefault("EMPLOYEE_CONTAINER_NAME", "employees")
	v.SetDefault("ATTENDANCE_CONTAINER_NAME", "attendance")
	v.SetDefault("BLOB_STORE", BlobStoreS3)
	v.SetDefault("STORAGE_CONTAINER_NAME", "employee-images")
	v.SetDefault("BLOB_PUBLIC_BASE_URL", "")
	v.SetDefault("AWS_REGION", "us-east-1") // Default region for AWS services
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("EMPLOYEE_EVENTS_QUEUE_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317")
}
