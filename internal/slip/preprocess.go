package slip

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"smoothie-be/internal/logger"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	maxWidth  = 800
	maxHeight = 600
)

// Preprocessor turns a slip image URL into recognition-ready image bytes.
type Preprocessor interface {
	Process(ctx context.Context, imageURL string) ([]byte, error)
}

type imagePreprocessor struct {
	httpClient *http.Client
}

func NewPreprocessor() Preprocessor {
	return &imagePreprocessor{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Process fetches the image, bounds it to 800x600 (never upscales), converts
// to grayscale with a contrast stretch around mid-luminance, and re-encodes
// as PNG. Any fetch or decode failure maps to ErrImageLoad.
func (p *imagePreprocessor) Process(ctx context.Context, imageURL string) ([]byte, error) {
	log := logger.FromCtx(ctx).With(zap.String("image_url", imageURL))

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Warn("failed to fetch slip image", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("slip image fetch returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrImageLoad, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	src, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		log.Warn("failed to decode slip image", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := min3(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h), 1)
	if scale < 1 {
		src = imaging.Resize(src, int(float64(w)*scale), int(float64(h)*scale), imaging.Linear)
	}

	img := imaging.Clone(src)
	enhance(img.Pix)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	return buf.Bytes(), nil
}

// enhance converts NRGBA pixels to luminance (ITU-R 601 weights) and applies
// a stretch: above mid-gray brighten by 1.2, at or below darken by 0.8.
func enhance(pix []uint8) {
	for i := 0; i+3 < len(pix); i += 4 {
		gray := float64(pix[i])*0.299 + float64(pix[i+1])*0.587 + float64(pix[i+2])*0.114

		var enhanced float64
		if gray > 128 {
			enhanced = gray * 1.2
			if enhanced > 255 {
				enhanced = 255
			}
		} else {
			enhanced = gray * 0.8
			if enhanced < 0 {
				enhanced = 0
			}
		}

		v := uint8(enhanced)
		pix[i], pix[i+1], pix[i+2] = v, v, v
	}
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
