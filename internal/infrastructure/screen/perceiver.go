// Package screen reads the client window through screenshots and OCR and
// drives it with synthetic input.
package screen

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/kbinani/screenshot"
	"github.com/otiai10/gosseract/v2"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/value"
	"trade_pilot/internal/infrastructure/screen/imaging"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

const digitWhitelist = "0123456789"

type OCRConfig struct {
	Language    string
	ScaleFactor int
}

// Perceiver captures regions with screenshot and reads them with tesseract.
// The tesseract client is not safe for concurrent use, so reads are
// serialized.
type Perceiver struct {
	mu     sync.Mutex
	client *gosseract.Client
	cfg    OCRConfig
}

func NewPerceiver(cfg OCRConfig) (*Perceiver, error) {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.Language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}

	return &Perceiver{client: client, cfg: cfg}, nil
}

func (p *Perceiver) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client.Close()
}

func (p *Perceiver) ReadDigits(ctx context.Context, region value.Region) (entity.PriceReading, error) {
	text, err := p.recognize(ctx, region, gosseract.PSM_SINGLE_LINE, digitWhitelist)
	if err != nil {
		return entity.PriceReading{}, err
	}

	reading := entity.ParsePriceReading(text)
	logger(ctx).Debug("ocr digits",
		slog.String(logx.FieldRegion, region.String()),
		slog.String(logx.FieldSensed, text),
		slog.Bool(logx.FieldValid, reading.Valid),
	)
	return reading, nil
}

// ReadText reads free text; line breaks are kept for the caller to collapse.
func (p *Perceiver) ReadText(ctx context.Context, region value.Region) (string, error) {
	text, err := p.recognize(ctx, region, gosseract.PSM_SINGLE_BLOCK, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ReadFragments returns every recognized word with its confidence.
func (p *Perceiver) ReadFragments(ctx context.Context, region value.Region) ([]entity.TextFragment, error) {
	data, err := p.capture(ctx, region)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.configure(gosseract.PSM_SINGLE_LINE, digitWhitelist); err != nil {
		return nil, err
	}
	if err := p.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("ocr set image: %w", err)
	}

	boxes, err := p.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr word boxes: %w", err)
	}

	fragments := make([]entity.TextFragment, 0, len(boxes))
	for _, b := range boxes {
		if word := strings.TrimSpace(b.Word); word != "" {
			fragments = append(fragments, entity.TextFragment{Text: word, Confidence: b.Confidence})
		}
	}
	return fragments, nil
}

func (p *Perceiver) recognize(ctx context.Context, region value.Region, mode gosseract.PageSegMode, whitelist string) (string, error) {
	data, err := p.capture(ctx, region)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.configure(mode, whitelist); err != nil {
		return "", err
	}
	if err := p.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("ocr set image: %w", err)
	}

	text, err := p.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr text: %w", err)
	}
	return text, nil
}

func (p *Perceiver) configure(mode gosseract.PageSegMode, whitelist string) error {
	if err := p.client.SetPageSegMode(mode); err != nil {
		return fmt.Errorf("ocr page mode: %w", err)
	}
	if err := p.client.SetWhitelist(whitelist); err != nil {
		return fmt.Errorf("ocr whitelist: %w", err)
	}
	return nil
}

func (p *Perceiver) capture(ctx context.Context, region value.Region) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if region.Empty() {
		return nil, fmt.Errorf("capture %s: empty region", region)
	}

	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", region, err)
	}

	prepared := imaging.Prepare(img, p.cfg.ScaleFactor)
	imaging.Invert(prepared)

	return imaging.EncodePNG(prepared)
}

// DisplayBounds reports the primary display, used to sanity check a layout.
func DisplayBounds() image.Rectangle {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}
	}
	return screenshot.GetDisplayBounds(0)
}
