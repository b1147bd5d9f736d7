package slip

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// ocrLanguages covers Thai bank slips: Thai script plus Latin digits/words.
const ocrLanguages = "tha+eng"

// ocrWhitelist restricts recognition to what verification needs: digits,
// separators and currency words.
const ocrWhitelist = "0123456789.,บาท THB"

// ExtractRequest carries both forms a backend may need: the OCR backend reads
// the preprocessed image, the remote backend submits the original URL.
type ExtractRequest struct {
	SlipURL string
	Image   []byte
}

// Extractor produces an Extraction from a slip, or ErrExtraction.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (*Extraction, error)
}

type ocrExtractor struct{}

// NewOCRExtractor returns the local tesseract-backed extractor.
func NewOCRExtractor() Extractor {
	return &ocrExtractor{}
}

func (e *ocrExtractor) Extract(ctx context.Context, req ExtractRequest) (*Extraction, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: no image data", ErrExtraction)
	}

	// gosseract clients are not safe for concurrent use; one per call.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("tha", "eng"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if err := client.SetWhitelist(ocrWhitelist); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if err := client.SetImageFromBytes(req.Image); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return &Extraction{Text: text}, nil
}
