package slip

import (
	"context"
	"fmt"
	"sync"

	"smoothie-be/internal/events"
	"smoothie-be/internal/logger"
	"smoothie-be/internal/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore persists the verification verdict. Writing the payment-verified
// flag is the orchestrator's only durable side effect.
type OrderStore interface {
	SetPaymentVerified(ctx context.Context, orderID string, verified bool) error
}

// StatusSink receives state transitions for live display (websocket hub).
// Presentation only; verification is correct without it.
type StatusSink interface {
	VerificationStatus(orderID string, state State, reason RejectReason, res *Result)
}

type NopSink struct{}

func (NopSink) VerificationStatus(string, State, RejectReason, *Result) {}

// VerifyRequest carries what one verification attempt needs from the order.
type VerifyRequest struct {
	OrderID       string
	SlipURL       string
	ExpectedTotal decimal.Decimal
	ExpectedName  string
}

// PendingOrder is an order eligible for the automatic sweep: paid by
// transfer, slip attached, verification verdict still unknown.
type PendingOrder = VerifyRequest

// PendingSource lists orders eligible for automatic verification.
type PendingSource interface {
	ListPendingVerification(ctx context.Context) ([]PendingOrder, error)
}

// Verifier sequences preprocess -> extract -> evaluate -> persist -> notify
// for one order at a time per order. Triggers for an order already in
// `checking` are dropped (ErrAlreadyChecking) rather than racing the write.
type Verifier struct {
	pre     Preprocessor
	extract Extractor
	eval    Evaluator
	orders  OrderStore
	sink    StatusSink
	pub     events.Publisher
	stats   *metrics.Stats

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewVerifier(
	pre Preprocessor,
	extract Extractor,
	orders OrderStore,
	sink StatusSink,
	pub events.Publisher,
	stats *metrics.Stats,
) *Verifier {
	if sink == nil {
		sink = NopSink{}
	}
	return &Verifier{
		pre:      pre,
		extract:  extract,
		eval:     NewEvaluator(),
		orders:   orders,
		sink:     sink,
		pub:      pub,
		stats:    stats,
		inflight: make(map[string]struct{}),
	}
}

// Verify runs one verification attempt. It may be entered from any state: a
// manual trigger re-checks even an already verified or rejected order and
// overwrites the previous verdict.
func (v *Verifier) Verify(ctx context.Context, req VerifyRequest, trigger Trigger) (*Result, State, error) {
	if req.OrderID == "" || req.SlipURL == "" {
		return nil, StateUnverified, fmt.Errorf("order %q has no slip to verify", req.OrderID)
	}

	if !v.begin(req.OrderID) {
		return nil, StateChecking, ErrAlreadyChecking
	}
	defer v.end(req.OrderID)

	log := logger.FromCtx(ctx).With(
		zap.String("order_id", req.OrderID),
		zap.String("trigger", string(trigger)),
	)

	v.stats.VerificationsStarted.Inc()
	v.sink.VerificationStatus(req.OrderID, StateChecking, ReasonNone, nil)
	log.Info("slip verification started")
	timer := metrics.StartTimer()

	image, err := v.pre.Process(ctx, req.SlipURL)
	if err != nil {
		log.Warn("slip image unreadable", zap.Error(err))
		return nil, StateRejected, v.reject(ctx, req.OrderID, ReasonUnreadableImage, nil)
	}

	extraction, err := v.extract.Extract(ctx, ExtractRequest{SlipURL: req.SlipURL, Image: image})
	if err != nil {
		log.Warn("slip extraction failed", zap.Error(err))
		return nil, StateRejected, v.reject(ctx, req.OrderID, ReasonExtractionFailed, nil)
	}

	res := v.eval.Evaluate(extraction, req.ExpectedTotal, req.ExpectedName)

	if !res.Outcome.Approved() {
		log.Info("slip did not match order",
			zap.String("outcome", string(res.Outcome)),
			zap.Bool("amount_match", res.AmountMatch),
			zap.Bool("name_match", res.NameMatch),
			zap.Duration("elapsed", timer.Duration()),
		)
		return &res, StateRejected, v.reject(ctx, req.OrderID, ReasonNoMatch, &res)
	}

	if err := v.orders.SetPaymentVerified(ctx, req.OrderID, true); err != nil {
		// Leave the last persisted verdict in place and surface the failure;
		// the UI must not claim a success the store did not confirm.
		log.Error("failed to persist verification verdict", zap.Error(err))
		return &res, StateChecking, fmt.Errorf("persist verification: %w", err)
	}

	v.stats.VerificationsVerified.Inc()
	v.sink.VerificationStatus(req.OrderID, StateVerified, ReasonNone, &res)
	v.publish(ctx, req.OrderID, res.Outcome, &res, ReasonNone, true)

	log.Info("slip verified",
		zap.String("outcome", string(res.Outcome)),
		zap.Bool("name_match", res.NameMatch),
		zap.Duration("elapsed", timer.Duration()),
	)
	return &res, StateVerified, nil
}

// VerifyPending is the automatic trigger: called when the admin order list
// loads, it checks every transfer order with a slip and an unknown verdict.
// Orders already in flight are skipped.
func (v *Verifier) VerifyPending(ctx context.Context, src PendingSource) error {
	pending, err := src.ListPendingVerification(ctx)
	if err != nil {
		return err
	}

	for _, p := range pending {
		if _, _, err := v.Verify(ctx, p, TriggerAuto); err != nil && err != ErrAlreadyChecking {
			logger.FromCtx(ctx).Warn("automatic verification failed",
				zap.String("order_id", p.OrderID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (v *Verifier) reject(ctx context.Context, orderID string, reason RejectReason, res *Result) error {
	if err := v.orders.SetPaymentVerified(ctx, orderID, false); err != nil {
		logger.FromCtx(ctx).Error("failed to persist rejection",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return fmt.Errorf("persist verification: %w", err)
	}

	v.stats.VerificationsRejected.Inc()
	v.sink.VerificationStatus(orderID, StateRejected, reason, res)

	outcome := Outcome("")
	if res != nil {
		outcome = res.Outcome
	}
	v.publish(ctx, orderID, outcome, res, reason, false)
	return nil
}

func (v *Verifier) publish(ctx context.Context, orderID string, outcome Outcome, res *Result, reason RejectReason, verified bool) {
	payload := events.SlipVerificationPayload{
		OrderID:  orderID,
		Outcome:  string(outcome),
		Verified: verified,
		Reason:   string(reason),
	}
	if res != nil {
		payload.AmountMatch = res.AmountMatch
		payload.NameMatch = res.NameMatch
	}
	v.pub.Publish(ctx, events.TopicSlipVerification, events.EventSlipVerificationDone, orderID, payload)
}

func (v *Verifier) begin(orderID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, busy := v.inflight[orderID]; busy {
		return false
	}
	v.inflight[orderID] = struct{}{}
	return true
}

func (v *Verifier) end(orderID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.inflight, orderID)
}
