package ocrloc

import (
	"os"
	"path/filepath"

	"github.com/bbiangul/ocrloc/llm"
)

// DefaultModel is the OCR model used when none is configured. It emits
// recognized text interleaved with <|LOC_n|> positional markers.
const DefaultModel = "PaddlePaddle/PaddleOCR-VL-1.5"

// DefaultPrompt asks the model for a plain full-page recognition pass,
// which makes it answer in its native marker format.
const DefaultPrompt = "请识别这张图片中的所有文字。"

// Config holds all configuration for the OCR engine.
type Config struct {
	// Vision configures the model endpoint.
	Vision llm.Config `json:"vision" yaml:"vision"`

	// Prompt is the recognition prompt sent with every image.
	// Defaults to DefaultPrompt.
	Prompt string `json:"prompt" yaml:"prompt"`

	// MaxTokens bounds the model response length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// CachePath is the full path to the SQLite response cache.
	// If empty, defaults to ~/.ocrloc/cache.db.
	CachePath string `json:"cache_path" yaml:"cache_path"`

	// NoCache disables the response cache entirely.
	NoCache bool `json:"no_cache" yaml:"no_cache"`
}

// DefaultConfig returns a Config targeting the SiliconFlow-hosted
// PaddleOCR-VL model. The API key must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Vision: llm.Config{
			Provider: "siliconflow",
			Model:    DefaultModel,
		},
		Prompt:    DefaultPrompt,
		MaxTokens: 2000,
	}
}

// resolveCachePath computes the final cache database path.
func (c *Config) resolveCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cache.db" // fallback to cwd
	}
	return filepath.Join(home, ".ocrloc", "cache.db")
}
