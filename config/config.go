// Package config resolves docsift's runtime configuration from the
// environment (with .env support) and an optional YAML rules file.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Store connection. MongoURI wins when set, otherwise Hostname:Port.
	MongoURI string
	Hostname string
	Port     string
	Database string

	// Sampling defaults, overridable per collection through Rules.
	SampleSize int
	Stride     int

	ScanWorkers int

	SchemaOut  string
	OpenAPIOut string

	ListenAddr    string
	CaptureDevice string
	CapturePort   int

	RegistryServer string
	RegistryAPIKey string

	LogLevel string
	LogFile  string

	Collections Rules
}

// FromEnv builds a Config from environment variables, falling back to the
// defaults the original tool shipped with. Call godotenv.Load before this if
// .env files should participate.
func FromEnv() Config {
	return Config{
		MongoURI:       getEnv("MONGODB_URI", ""),
		Hostname:       getEnv("MONGODB_HOSTNAME", "localhost"),
		Port:           getEnv("MONGODB_PORT", "27017"),
		Database:       getEnv("DATABASE_NAME", ""),
		SampleSize:     getEnvInt("SAMPLE_SIZE", 0),
		Stride:         getEnvInt("STRIDE", 1),
		ScanWorkers:    getEnvInt("SCAN_WORKERS", 4),
		SchemaOut:      getEnv("SCHEMA_OUT", "data/schema.json"),
		OpenAPIOut:     getEnv("OPENAPI_OUT", ""),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8489"),
		CaptureDevice:  getEnv("CAPTURE_DEVICE", "lo"),
		CapturePort:    getEnvInt("CAPTURE_PORT", 27017),
		RegistryServer: getEnv("REGISTRY_SERVER", ""),
		RegistryAPIKey: getEnv("REGISTRY_APIKEY", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}
}

// URI returns the connection string for the document store.
func (c Config) URI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return fmt.Sprintf("mongodb://%s:%s", c.Hostname, c.Port)
}

// SamplingFor resolves the sample size and stride for one collection,
// applying any per-collection override from the rules file.
func (c Config) SamplingFor(collection string) (sampleSize, stride int) {
	sampleSize, stride = c.SampleSize, c.Stride
	if o, ok := c.Collections.Overrides[collection]; ok {
		if o.SampleSize != nil {
			sampleSize = *o.SampleSize
		}
		if o.Stride != nil {
			stride = *o.Stride
		}
	}
	if stride < 1 {
		stride = 1
	}
	return sampleSize, stride
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
