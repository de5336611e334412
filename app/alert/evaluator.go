package alert

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nkwenti/pricewatch/app/database"
)

const bestValueLimit = 10

// Evaluator runs the three digest passes over persisted state. It re-queries
// the store instead of consuming in-memory ingestion results, so a run can be
// repeated safely. Each digest is gated on its own data; a store failure in
// one digest does not block the others.
type Evaluator struct {
	products database.ProductRepository
	alerts   database.AlertRepository
	renderer *Renderer
	sender   Sender

	valueRatioMin     float64
	recentAlertsLimit int
	topN              int
}

func NewEvaluator(products database.ProductRepository, alerts database.AlertRepository,
	renderer *Renderer, sender Sender, valueRatioMin float64, recentAlertsLimit, topN int) *Evaluator {
	return &Evaluator{
		products:          products,
		alerts:            alerts,
		renderer:          renderer,
		sender:            sender,
		valueRatioMin:     valueRatioMin,
		recentAlertsLimit: recentAlertsLimit,
		topN:              topN,
	}
}

// Run evaluates all digests for today. Dispatch failures are logged and
// swallowed; store and render failures are collected into the returned error
// after every digest has had its chance to run.
func (e *Evaluator) Run() error {
	day := database.Day(time.Now())

	var errs []error
	if err := e.priceDropDigest(); err != nil {
		slog.Error("Price drop digest failed", "error", err)
		errs = append(errs, err)
	}
	if err := e.newArrivalsDigest(day); err != nil {
		slog.Error("New arrivals digest failed", "error", err)
		errs = append(errs, err)
	}
	if err := e.bestValueDigest(day); err != nil {
		slog.Error("Best value digest failed", "error", err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (e *Evaluator) priceDropDigest() error {
	drops, err := e.alerts.RecentAlertsByKind(database.AlertPriceDrop, e.recentAlertsLimit)
	if err != nil {
		return fmt.Errorf("failed to load recent price drops: %w", err)
	}
	if len(drops) == 0 {
		slog.Debug("No recent price drops, digest skipped")
		return nil
	}

	subject, body, err := e.renderer.RenderPriceDropDigest(drops)
	if err != nil {
		return err
	}

	e.dispatch(subject, body)
	return nil
}

func (e *Evaluator) newArrivalsDigest(day string) error {
	count, err := e.products.CountProductsForDay(day)
	if err != nil {
		return fmt.Errorf("failed to count today's products: %w", err)
	}
	if count == 0 {
		slog.Debug("No products seen today, digest skipped")
		return nil
	}

	top, err := e.products.TopProductsByValue(day, e.topN)
	if err != nil {
		return fmt.Errorf("failed to load top products: %w", err)
	}

	subject, body, err := e.renderer.RenderNewArrivalsDigest(count, top)
	if err != nil {
		return err
	}

	e.dispatch(subject, body)
	return e.alerts.InsertAlert(database.AlertNewArrival, subject, "", nil, nil)
}

func (e *Evaluator) bestValueDigest(day string) error {
	best, err := e.products.BestValueProducts(day, e.valueRatioMin, bestValueLimit)
	if err != nil {
		return fmt.Errorf("failed to load best value products: %w", err)
	}
	if len(best) == 0 {
		slog.Debug("No products above value threshold, digest skipped")
		return nil
	}

	subject, body, err := e.renderer.RenderBestValueDigest(best)
	if err != nil {
		return err
	}

	e.dispatch(subject, body)
	return e.alerts.InsertAlert(database.AlertBestValue, subject, "", nil, nil)
}

func (e *Evaluator) dispatch(subject, body string) {
	if sent := e.sender.Send(subject, body); !sent {
		slog.Warn("Digest dispatch failed", "subject", subject)
	}
}
