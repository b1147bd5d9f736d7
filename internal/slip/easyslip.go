package slip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smoothie-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const verifyPath = "/api/v1/verify"

type easySlipExtractor struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewEasySlipExtractor returns the remote-verification-backed extractor.
func NewEasySlipExtractor(baseURL, token string) Extractor {
	if token == "" {
		logger.L().Warn("EasySlip token is empty")
	}

	return &easySlipExtractor{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type easySlipResponse struct {
	Amount  json.Number `json:"amount"`
	Account struct {
		Name string `json:"name"`
	} `json:"account"`
	RefNo string `json:"ref_no"`
	Bank  struct {
		Name string `json:"name"`
	} `json:"bank"`
	Datetime string `json:"datetime"`
}

func (e *easySlipExtractor) Extract(ctx context.Context, req ExtractRequest) (*Extraction, error) {
	log := logger.FromCtx(ctx).With(zap.String("slip_url", req.SlipURL))

	body, err := json.Marshal(map[string]string{"url": req.SlipURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+verifyPath, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.token)

	log.Info("sending slip to verification service")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		log.Error("verification service request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrExtraction, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("verification service returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBody),
		)
		return nil, fmt.Errorf("%w: status %d", ErrExtraction, resp.StatusCode)
	}

	var decoded easySlipResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		log.Error("failed decoding verification response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	ex := &Extraction{
		PayerName: decoded.Account.Name,
		RefNo:     decoded.RefNo,
		BankName:  decoded.Bank.Name,
		Datetime:  decoded.Datetime,
		Text:      decoded.Account.Name,
	}

	if decoded.Amount != "" {
		amount, err := decimal.NewFromString(decoded.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q", ErrExtraction, decoded.Amount)
		}
		ex.Amount = &amount
	}

	log.Info("slip fields extracted",
		zap.String("ref_no", ex.RefNo),
		zap.String("bank", ex.BankName),
	)

	return ex, nil
}
