// =============================================================================
// 📦 contentgen defaults
// =============================================================================
package config

import "time"

// Request bounds applied by RequestSettings.
const (
	DefaultTimeoutMs      = 45000
	MinTimeoutMs          = 8000
	MaxTimeoutMs          = 120000
	DefaultRetryCount     = 1
	MinRetryCount         = 0
	MaxRetryCount         = 3
	DefaultRetryBackoffMs = 700
	MinRetryBackoffMs     = 120
	MaxRetryBackoffMs     = 5000
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Log:        DefaultLogConfig(),
		Telemetry:  DefaultTelemetryConfig(),
		Metrics:    DefaultMetricsConfig(),
		Generation: DefaultGenerationConfig(),
		Vision:     DefaultVisionConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    9 * time.Minute, // covers timeout × (retry+1) plus backoff
		ShutdownTimeout: 15 * time.Second,
		MaxBodyBytes:    32 << 20,
	}
}

// DefaultLogConfig returns the default log configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "contentgen",
		SampleRate:   0.1,
		Insecure:     true,
	}
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "contentgen",
		Path:      "/metrics",
	}
}

// DefaultGenerationConfig returns the default generation configuration.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		TimeoutMs:      DefaultTimeoutMs,
		RetryCount:     DefaultRetryCount,
		RetryBackoffMs: DefaultRetryBackoffMs,
		StructuredMode: true,
		Providers:      map[string]ProviderConfig{},
		AppTitle:       "contentgen",
	}
}

// DefaultVisionConfig returns the default vision configuration.
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{
		AllowTextFallback: true,
		MaxImages:         4,
		MaxImageBytes:     5 << 20,
	}
}
