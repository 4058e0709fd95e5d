package config

import (
	"errors"
	"itad/persistence"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type WorkOrderConfig struct {
	// Prefix of work order numbers, e.g. WO-000042.
	Prefix string `mapstructure:"prefix"`
	// RemarketingWarehouse receives the asset once its work order is finalized.
	RemarketingWarehouse string `mapstructure:"remarketingWarehouse"`
}

type EvidenceConfig struct {
	Backend string `mapstructure:"backend"` // oss | s3
}

type OSSConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Bucket    string `mapstructure:"bucket"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type ElasticsearchConfig struct {
	URL string `mapstructure:"url"`
}

type TracingConfig struct {
	ServiceName string `mapstructure:"serviceName"`
	AgentHost   string `mapstructure:"agentHost"`
}

type Config struct {
	Server        ServerConfig               `mapstructure:"server"`
	Database      persistence.DatabaseConfig `mapstructure:"database"`
	WorkOrder     WorkOrderConfig            `mapstructure:"workorder"`
	Evidence      EvidenceConfig             `mapstructure:"evidence"`
	OSS           OSSConfig                  `mapstructure:"oss"`
	S3            S3Config                   `mapstructure:"s3"`
	Elasticsearch ElasticsearchConfig        `mapstructure:"elasticsearch"`
	Tracing       TracingConfig              `mapstructure:"tracing"`
}

var envBindings = map[string]string{
	"server.port":                    "SERVER_PORT",
	"database.driverType":            "DB_DRIVER_TYPE",
	"database.driverArgs":            "DB_DRIVER_ARGS",
	"workorder.prefix":               "WORK_ORDER_PREFIX",
	"workorder.remarketingWarehouse": "REMARKETING_WAREHOUSE",
	"evidence.backend":               "EVIDENCE_BACKEND",
	"oss.endpoint":                   "OSS_ENDPOINT",
	"oss.accessKey":                  "OSS_ACCESS_KEY",
	"oss.secretKey":                  "OSS_SECRET_KEY",
	"oss.bucket":                     "OSS_BUCKET",
	"s3.bucket":                      "S3_BUCKET",
	"s3.region":                      "S3_REGION",
	"s3.accessKeyID":                 "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":             "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":            "S3_CLOUDFRONT_DOMAIN",
	"elasticsearch.url":              "ELASTICSEARCH_URL",
	"tracing.serviceName":            "TRACING_SERVICE_NAME",
	"tracing.agentHost":              "JAEGER_AGENT_HOST",
}

// LoadConfig reads config.yaml under path (optional) and overrides it with environment variables.
// A .env file in the working directory is loaded first.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.driverType", "mysql")
	v.SetDefault("workorder.prefix", "WO")
	v.SetDefault("workorder.remarketingWarehouse", "REMARKETING")
	v.SetDefault("evidence.backend", "oss")
	v.SetDefault("oss.bucket", "itad-evidences")
	v.SetDefault("tracing.serviceName", "itad-workshop")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	config.WorkOrder.Prefix = strings.ToUpper(strings.TrimSpace(config.WorkOrder.Prefix))
	return config, nil
}
