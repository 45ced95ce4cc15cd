package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDefaultsWhenFileMissing(t *testing.T) {
	conf, err := InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, conf.Port)
	assert.Equal(t, []string{"mp4", "avi", "mov"}, conf.AllowedExtensions)
	assert.Equal(t, "0.0.0.0:5000", conf.Addr())
}

func TestInitConfigYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
port: 8080
uploadDir: /tmp/uploads
maxUploadSize: 1024
processor:
  codec: MJPG
  inferenceWidth: 640
triton:
  modelName: signs
  labels: "stop, yield,speed_limit"
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	t.Setenv("PORT", "9090")
	conf, err := InitConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, conf.Port)
	assert.Equal(t, "/tmp/uploads", conf.UploadDir)
	assert.Equal(t, int64(1024), conf.MaxUploadSize)
	assert.Equal(t, "MJPG", conf.Processor.Codec)
	assert.Equal(t, 640, conf.Processor.InferenceWidth)
	assert.Equal(t, "signs", conf.Triton.ModelName)
	assert.Equal(t, map[int]string{0: "stop", 1: "yield", 2: "speed_limit"}, conf.Triton.GetLabelMap())
}

func TestInitConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processor:\n  codec: h264x\n"), 0644))

	_, err := InitConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("s3:\n  enabled: true\n  bucket: \"\"\n"), 0644))
	_, err = InitConfig(path)
	assert.Error(t, err)
}

func TestAllowedFile(t *testing.T) {
	conf := DefaultConfig()

	cases := map[string]bool{
		"clip.mp4":     true,
		"clip.MOV":     true,
		"a.b.avi":      true,
		"clip.mkv":     false,
		"mp4":          false,
		"clip.":        false,
		"archive.mp4x": false,
	}
	for name, want := range cases {
		assert.Equal(t, want, conf.AllowedFile(name), name)
	}
}

func TestTritonRequestTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, TritonConfig{}.RequestTimeout())
	assert.Equal(t, 5*time.Second, TritonConfig{Timeout: 5}.RequestTimeout())
}

func TestRedactedHidesSecrets(t *testing.T) {
	conf := DefaultConfig()
	conf.S3.AccessKeyID = "minioadmin"
	conf.S3.SecretAccessKey = "supersecret"

	redacted := conf.Redacted()
	assert.NotContains(t, fmt.Sprintf("%+v", redacted), "supersecret")
	assert.Equal(t, "minioadmin", redacted.S3.AccessKeyID)
	// the original is left untouched
	assert.Equal(t, "supersecret", conf.S3.SecretAccessKey)

	conf.S3.SecretAccessKey = ""
	assert.Empty(t, conf.Redacted().S3.SecretAccessKey)
}
