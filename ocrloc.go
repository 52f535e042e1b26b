// Package ocrloc recognizes text in images with a PaddleOCR-VL style
// vision model and returns each fragment with a pixel-accurate bounding
// polygon. The model's raw marker stream is parsed by the loctag
// subpackage; this package supplies the image probing, model transport,
// and response caching around it.
package ocrloc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bbiangul/ocrloc/llm"
	"github.com/bbiangul/ocrloc/loctag"
	"github.com/bbiangul/ocrloc/store"
)

// Engine recognizes text in image files.
type Engine interface {
	// Recognize runs one image through the model and returns located
	// text records. Responses are served from the cache when the image
	// bytes, model, and prompt all match a previous run.
	Recognize(ctx context.Context, imagePath string) (*Result, error)

	// Close cleanly shuts down the engine.
	Close() error
}

// Result is the structured output for one image.
type Result struct {
	ImagePath string          `json:"image_path"`
	ImageSize [2]int          `json:"image_size"`
	Texts     []loctag.Record `json:"texts"`
	FullText  string          `json:"full_text"`
}

type engine struct {
	cfg    Config
	vision llm.Provider
	cache  *store.Store // nil when caching is disabled
}

// New creates an Engine from configuration. Zero-valued fields are filled
// from DefaultConfig.
func New(cfg Config) (Engine, error) {
	def := DefaultConfig()
	if cfg.Vision.Provider == "" {
		cfg.Vision.Provider = def.Vision.Provider
	}
	if cfg.Vision.Model == "" {
		cfg.Vision.Model = def.Vision.Model
	}
	if cfg.Prompt == "" {
		cfg.Prompt = def.Prompt
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}

	vision, err := llm.NewProvider(cfg.Vision)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	e := &engine{cfg: cfg, vision: vision}

	if !cfg.NoCache {
		cache, err := store.Open(cfg.resolveCachePath())
		if err != nil {
			// The cache is an optimization; a broken cache file should
			// not keep the tool from running.
			slog.Warn("ocrloc: response cache unavailable, continuing without it",
				"path", cfg.resolveCachePath(), "error", err)
		} else {
			e.cache = cache
		}
	}

	return e, nil
}

func (e *engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

func (e *engine) Recognize(ctx context.Context, imagePath string) (*Result, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUnreadable, err)
	}

	width, height, err := decodeSize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageUnreadable, imagePath, err)
	}

	raw, err := e.rawResponse(ctx, imagePath, data, width, height)
	if err != nil {
		return nil, err
	}

	texts, err := loctag.Parse(raw, width, height)
	if err != nil {
		return nil, fmt.Errorf("parsing response for %s: %w", imagePath, err)
	}

	parts := make([]string, len(texts))
	for i, t := range texts {
		parts[i] = t.Text
	}

	return &Result{
		ImagePath: imagePath,
		ImageSize: [2]int{width, height},
		Texts:     texts,
		FullText:  strings.Join(parts, "\n"),
	}, nil
}

// rawResponse returns the model's raw text for the image, consulting the
// response cache first.
func (e *engine) rawResponse(ctx context.Context, imagePath string, data []byte, width, height int) (string, error) {
	sum := sha256.Sum256(data)
	key := store.Key{
		ContentHash: hex.EncodeToString(sum[:]),
		Model:       e.cfg.Vision.Model,
		Prompt:      e.cfg.Prompt,
	}

	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("ocrloc: cache lookup failed", "image", imagePath, "error", err)
		} else if ok {
			slog.Debug("ocrloc: cache hit", "image", imagePath)
			return cached.RawContent, nil
		}
	}

	resp, err := e.vision.ChatWithImages(ctx, llm.VisionChatRequest{
		Messages: []llm.VisionMessage{
			{
				Role: "user",
				Content: []llm.ContentPart{
					{Type: "text", Text: e.cfg.Prompt},
					{Type: "image_url", ImageURL: &llm.ImageURL{URL: imageDataURL(imagePath, data)}},
				},
			},
		},
		MaxTokens: e.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrModelRequestFailed, imagePath, err)
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, resp.Content, width, height); err != nil {
			slog.Warn("ocrloc: caching response failed", "image", imagePath, "error", err)
		}
	}

	return resp.Content, nil
}
