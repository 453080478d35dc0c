package worker

// stock_alert_worker.go
// Processes low-stock alert jobs from QueueStockAlert and mails the configured
// recipient. The SMTP relay sits behind a circuit breaker so a dead mail
// server fast-fails instead of blocking every worker on timeouts.

import (
	"context"
	"encoding/json"
	"fmt"

	"backstock/internal/infra"

	"github.com/rs/zerolog/log"
)

// StockAlertWorker mails low-stock notifications.
type StockAlertWorker struct {
	mailer    *infra.Mailer
	cb        *infra.CircuitBreaker
	recipient string
}

func NewStockAlertWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, recipient string) *StockAlertWorker {
	return &StockAlertWorker{mailer: mailer, cb: cb, recipient: recipient}
}

// Process sends the alert mail. Returning an error re-enqueues the job until
// it exhausts its attempts and lands in the DLQ.
func (w *StockAlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload StockAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("stock_alert_worker: invalid payload — dropping")
		return nil
	}
	if w.recipient == "" {
		log.Warn().Msg("stock_alert_worker: no alert recipient configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s (%s)", payload.ProductName, payload.VendorName)
	body := fmt.Sprintf(
		"Stock for %s from vendor %s dropped to %d (threshold %d).\nVendor product: %s\n",
		payload.ProductName, payload.VendorName, payload.Stock, payload.Threshold,
		payload.VendorProductID,
	)

	err := w.cb.Execute(func() error {
		return w.mailer.Send(w.recipient, subject, body)
	})
	if err != nil {
		log.Error().Err(err).Str("to", w.recipient).Msg("stock_alert_worker: failed to send alert")
		return err
	}
	log.Info().Str("to", w.recipient).Str("vendor_product_id", payload.VendorProductID).
		Msg("stock_alert_worker: alert sent")
	return nil
}
