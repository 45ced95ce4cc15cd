package config

import (
	"fmt"
	"path"
	"strings"
	"time"
)

type ProcessorConfig struct {
	// FourCC of the output encoder.
	Codec string `yaml:"codec" validate:"len=4"`
	// Frames wider than this are downsampled before inference, 0 disables.
	InferenceWidth int     `yaml:"inferenceWidth" validate:"min=0"`
	ConfThreshold  float32 `yaml:"confThreshold" validate:"min=0,max=1"`
}

type TritonConfig struct {
	ServerAddr   string `yaml:"serverAddr" env:"TRITON_SERVER_ADDR" validate:"required"`
	ModelName    string `yaml:"modelName" validate:"required"`
	ModelVersion string `yaml:"modelVersion"`
	// Comma separated class names, indexed by class id.
	Labels  string `yaml:"labels"`
	Timeout int    `yaml:"timeout" validate:"min=0"`
}

// RequestTimeout bounds a single inference call, 30s when unset.
func (t TritonConfig) RequestTimeout() time.Duration {
	if t.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.Timeout) * time.Second
}

func (t TritonConfig) GetLabelMap() map[int]string {
	labelMap := make(map[int]string)
	if t.Labels == "" {
		return labelMap
	}
	for i, label := range strings.Split(t.Labels, ",") {
		labelMap[i] = strings.TrimSpace(label)
	}
	return labelMap
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket" validate:"required_if=Enabled true"`
	Endpoint        string `yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

func (s3 *S3Config) UrlPrefix() string {
	if s3.UseSSL {
		return fmt.Sprintf("https://%s/%s", s3.Endpoint, s3.Bucket)
	}
	return fmt.Sprintf("http://%s/%s", s3.Endpoint, s3.Bucket)
}

type NSQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	NSQDAddr string `yaml:"nsqdAddr" validate:"required_if=Enabled true"`
	Topic    string `yaml:"topic" validate:"required_if=Enabled true"`
}

type Config struct {
	Host              string          `yaml:"host"`
	Port              int             `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	UploadDir         string          `yaml:"uploadDir" env:"SIGNSIGHT_UPLOAD_DIR" validate:"required"`
	MaxUploadSize     int64           `yaml:"maxUploadSize" env:"SIGNSIGHT_MAX_UPLOAD_SIZE" validate:"gt=0"`
	AllowedExtensions []string        `yaml:"allowedExtensions" validate:"min=1,dive,required"`
	DataDir           string          `yaml:"dataDir" env:"SIGNSIGHT_DATA_DIR" validate:"required"`
	Pprof             bool            `yaml:"pprof"`
	Processor         ProcessorConfig `yaml:"processor"`
	Triton            TritonConfig    `yaml:"triton"`
	S3                S3Config        `yaml:"s3"`
	NSQ               NSQConfig       `yaml:"nsq"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) MetadataDir() string {
	return path.Join(c.DataDir, "metadata")
}

// Redacted returns a copy of c that is safe to log.
func (c Config) Redacted() Config {
	if c.S3.SecretAccessKey != "" {
		c.S3.SecretAccessKey = "******"
	}
	return c
}

// AllowedFile reports whether filename carries one of the allowed extensions.
func (c Config) AllowedFile(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, allowed := range c.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func DefaultConfig() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              5000,
		UploadDir:         "./static/uploads",
		MaxUploadSize:     100 << 20,
		AllowedExtensions: []string{"mp4", "avi", "mov"},
		DataDir:           "./data",
		Processor: ProcessorConfig{
			Codec:          "mp4v",
			InferenceWidth: 0,
			ConfThreshold:  0.25,
		},
		Triton: TritonConfig{
			ServerAddr:   "localhost:8001",
			ModelName:    "traffic_sign_predictor",
			ModelVersion: "1",
			Timeout:      30,
		},
		S3: S3Config{
			Bucket:   "signsight",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		NSQ: NSQConfig{
			NSQDAddr: "localhost:4150",
			Topic:    "processed_videos",
		},
	}
}
