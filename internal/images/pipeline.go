package images

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// Variants holds the stored image URLs per display size. POS screens pick
// the size they render; the original is kept for reprints and zoom.
type Variants struct {
	Original string
	Thumb    string
	Medium   string
	Large    string
}

// Pipeline derives display variants from a catalog image URL.
type Pipeline interface {
	Derive(ctx context.Context, sourceURL string) Variants
}

const (
	widthThumb  = 128
	widthMedium = 512
	widthLarge  = 1024
)

// Deriver builds variant URLs against an image-resize proxy. One probe per
// source checks the proxy is actually serving; when it is not, every slot
// falls back to the original so screens still render something.
type Deriver struct {
	base   string
	http   *resty.Client
	logger *zap.Logger
}

func NewDeriver(baseURL string, timeout time.Duration, logger *zap.Logger) *Deriver {
	d := &Deriver{base: baseURL, logger: logger}
	if baseURL != "" {
		d.http = resty.New().SetTimeout(timeout)
	}
	return d
}

func (d *Deriver) Close() error {
	if d.http == nil {
		return nil
	}
	return d.http.Close()
}

func (d *Deriver) Derive(ctx context.Context, sourceURL string) Variants {
	if sourceURL == "" {
		return Variants{}
	}
	passthrough := Variants{
		Original: sourceURL,
		Thumb:    sourceURL,
		Medium:   sourceURL,
		Large:    sourceURL,
	}
	if d.base == "" {
		return passthrough
	}

	thumb := d.variantURL(sourceURL, widthThumb)
	res, err := d.http.R().SetContext(ctx).Head(thumb)
	if err != nil || res.IsError() {
		d.logger.Warn("image derivation unavailable, storing original",
			zap.String("source", sourceURL), zap.Error(err))
		return passthrough
	}

	return Variants{
		Original: sourceURL,
		Thumb:    thumb,
		Medium:   d.variantURL(sourceURL, widthMedium),
		Large:    d.variantURL(sourceURL, widthLarge),
	}
}

func (d *Deriver) variantURL(sourceURL string, width int) string {
	return fmt.Sprintf("%s/resize?width=%d&src=%s", d.base, width, url.QueryEscape(sourceURL))
}
