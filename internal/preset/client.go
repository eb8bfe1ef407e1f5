package preset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bhi-elliot/ScrappyMart/internal/metrics"
	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

const (
	indexFile        = "index.json"
	defaultCacheSize = 64
	defaultCacheTTL  = 10 * time.Minute
	maxPresetBytes   = 1 << 20
)

// Config holds preset catalog settings.
type Config struct {
	BaseURL   string
	CacheSize int
	CacheTTL  time.Duration
}

// Client fetches presets and the catalog index over HTTP, caching successful
// responses.
type Client struct {
	baseURL string
	client  *http.Client
	presets *expirable.LRU[string, model.Preset]
	index   *expirable.LRU[string, []model.PresetFile]
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Client{
		baseURL: base,
		client:  &http.Client{Timeout: 10 * time.Second},
		presets: expirable.NewLRU[string, model.Preset](cfg.CacheSize, nil, cfg.CacheTTL),
		index:   expirable.NewLRU[string, []model.PresetFile](1, nil, cfg.CacheTTL),
		logger:  logger,
	}
}

// Index returns the catalog of available presets.
func (c *Client) Index(ctx context.Context) ([]model.PresetFile, error) {
	if files, ok := c.index.Get(indexFile); ok {
		metrics.PresetFetches.WithLabelValues("hit").Inc()
		return cloneFiles(files), nil
	}

	body, err := c.get(ctx, indexFile)
	if err != nil {
		return nil, err
	}

	var files []model.PresetFile
	if err := json.Unmarshal(body, &files); err != nil {
		metrics.PresetFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode preset index: %w", err)
	}
	c.index.Add(indexFile, files)
	return cloneFiles(files), nil
}

// Fetch returns the named preset from the catalog.
func (c *Client) Fetch(ctx context.Context, filename string) (model.Preset, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return model.Preset{}, fmt.Errorf("%w: bad filename %q", ErrNotFound, filename)
	}

	if p, ok := c.presets.Get(filename); ok {
		metrics.PresetFetches.WithLabelValues("hit").Inc()
		return clonePreset(p), nil
	}

	body, err := c.get(ctx, url.PathEscape(filename))
	if err != nil {
		return model.Preset{}, err
	}

	p, err := Parse(body, filename)
	if err != nil {
		metrics.PresetFetches.WithLabelValues("error").Inc()
		return model.Preset{}, fmt.Errorf("preset %q: %w", filename, err)
	}
	c.presets.Add(filename, p)
	return clonePreset(p), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build preset request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.PresetFetches.WithLabelValues("error").Inc()
		c.logger.Warn("preset request failed", "path", path, "error", err)
		return nil, fmt.Errorf("preset request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.PresetFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.PresetFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("preset catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPresetBytes))
	if err != nil {
		metrics.PresetFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read preset response: %w", err)
	}
	metrics.PresetFetches.WithLabelValues("ok").Inc()
	return body, nil
}

func clonePreset(p model.Preset) model.Preset {
	dup := p
	dup.Items = make([]model.PresetItem, len(p.Items))
	copy(dup.Items, p.Items)
	return dup
}

func cloneFiles(files []model.PresetFile) []model.PresetFile {
	dup := make([]model.PresetFile, len(files))
	copy(dup, files)
	return dup
}
