package services

import (
	"context"
	"errors"
	"time"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/logger"
	"vaultflow/internal/webhooks"
)

// Webhook outcomes reported per transition.
const (
	OutcomeApplied  = "applied"
	OutcomeNoop     = "noop"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// webhookService authenticates indexer deliveries and feeds the derived
// transitions to the state machine.
type webhookService struct {
	txSvc         TransactionServicer
	secret        string
	tolerance     time.Duration
	receiptSuffix string
	now           func() time.Time
}

// NewWebhookService creates a new WebhookServicer.
func NewWebhookService(txSvc TransactionServicer, secret string, tolerance time.Duration, receiptSuffix string) WebhookServicer {
	return &webhookService{
		txSvc:         txSvc,
		secret:        secret,
		tolerance:     tolerance,
		receiptSuffix: receiptSuffix,
		now:           time.Now,
	}
}

// VerifyAndHandle checks the delivery signature against the raw body before
// anything is parsed.
func (s *webhookService) VerifyAndHandle(ctx context.Context, signatureHeader string, rawBody []byte) (*WebhookResult, error) {
	if err := webhooks.VerifySignature(signatureHeader, rawBody, s.secret, s.now(), s.tolerance); err != nil {
		logger.Named("webhook").Warnw("webhook signature rejected", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrInvalidWebhookSignature, err)
	}

	evt, err := webhooks.ParseEvent(rawBody)
	if err != nil {
		return nil, apperrors.WrapWithMessage(apperrors.ErrInvalidInput, "malformed webhook payload", err)
	}
	return s.HandleEvent(ctx, evt)
}

// HandleEvent applies each relevant transition independently; one failing
// transition does not stop the others.
func (s *webhookService) HandleEvent(ctx context.Context, evt *webhooks.Event) (*WebhookResult, error) {
	log := logger.Named("webhook")

	transitions := webhooks.DeriveTransitions(evt, s.receiptSuffix)
	if len(transitions) == 0 {
		log.Debugw("webhook ignored", "event_id", evt.ID, "type", evt.Type)
		return &WebhookResult{Status: "ignored", Details: []TransitionDetail{}}, nil
	}

	details := make([]TransitionDetail, 0, len(transitions))
	for _, tr := range transitions {
		d := TransitionDetail{TxHash: tr.TxHash, Status: tr.Status}

		res, err := s.txSvc.ApplyStatus(ctx, tr.TxHash, tr.Status)
		switch {
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			d.Outcome = OutcomeNotFound
		case err != nil:
			d.Outcome = OutcomeError
			d.Error = err.Error()
			log.Errorw("webhook transition failed", "event_id", evt.ID, "tx_hash", tr.TxHash, "status", tr.Status, "error", err)
		case res.Changed:
			d.Outcome = OutcomeApplied
		default:
			d.Outcome = OutcomeNoop
		}
		details = append(details, d)
	}

	log.Infow("webhook processed", "event_id", evt.ID, "transitions", len(details))
	return &WebhookResult{Status: "processed", Details: details}, nil
}
