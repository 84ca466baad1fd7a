package calculate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tender-backend/internal/artifact"
	"tender-backend/internal/pricing"
	"tender-backend/internal/service/orders"
	"tender-backend/internal/storage"
)

var ErrRatesUnavailable = errors.New("currency rates unavailable")

type Storage interface {
	GetOrder(ctx context.Context, id int64) (*storage.Order, error)
	UpdateOrder(ctx context.Context, o *storage.Order) error
}

type RatesProvider interface {
	Rates(ctx context.Context) (pricing.Rates, error)
}

// Service — оркестратор расчёта: шаблон, курсы, файл, сохранение.
type Service struct {
	log       *slog.Logger
	storage   Storage
	model     pricing.Model
	rates     RatesProvider
	artifacts artifact.Store
}

func New(log *slog.Logger, s Storage, model pricing.Model, rates RatesProvider, artifacts artifact.Store) *Service {
	return &Service{log: log, storage: s, model: model, rates: rates, artifacts: artifacts}
}

// Calculate recalculates the order with the patch applied and persists the
// updated parameter bag together with the new workbook location. The scenario
// is always the stored order type.
func (s *Service) Calculate(ctx context.Context, id int64, patch storage.OrderPatch) (*storage.Order, error) {
	const op = "service.calculate.Calculate"

	log := s.log.With(slog.String("op", op), slog.Int64("order_id", id))

	if err := orders.ValidatePatch(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	scenario := order.Type
	if !scenario.Valid() {
		return nil, fmt.Errorf("%s: %w: %s", op, pricing.ErrUnknownOrderType, scenario)
	}

	incoming := patch.Parameters.WithoutOutputs()
	patch.Parameters = nil
	patch.Type = nil
	patch.Status = nil
	order.ApplyPatch(patch)

	params := order.Parameters.Merge(incoming)

	rates, tpl, err := s.prepare(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if tpl != nil {
		defer tpl.Close()
	}

	derived, _, err := pricing.Derive(scenario, params, rates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in := pricing.Input{Type: scenario, Params: derived, Rates: rates}

	var res *pricing.Result
	if tpl != nil {
		res, err = tpl.Calculate(ctx, in)
	} else {
		res, err = s.model.Calculate(ctx, in)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, w := range res.Warnings {
		log.Warn("calculation warning", slog.String("type", string(scenario)), slog.String("warning", w.Error()))
	}

	order.Parameters = res.Outputs.Apply(derived)

	var saved string
	if len(res.Workbook) > 0 {
		name := artifact.Name(order.ID)
		url, err := s.artifacts.Save(ctx, name, res.Workbook)
		if err != nil {
			return nil, fmt.Errorf("%s: сохранение файла: %w", op, err)
		}
		saved = name
		order.FilePath = &url
	}

	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		if saved != "" {
			if rmErr := s.artifacts.Remove(context.WithoutCancel(ctx), saved); rmErr != nil {
				log.Error("failed to remove orphan artifact", slog.String("name", saved), slog.String("error", rmErr.Error()))
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order calculated", slog.String("type", string(scenario)), slog.Int("warnings", len(res.Warnings)))

	updated, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		log.Warn("failed to reload order", slog.String("error", err.Error()))
		return order, nil
	}
	return updated, nil
}

// prepare fetches the rates (USD only) and loads the template concurrently.
func (s *Service) prepare(ctx context.Context, scenario storage.OrderType) (pricing.Rates, *pricing.Template, error) {
	var (
		rates pricing.Rates
		tpl   *pricing.Template
	)

	g, gctx := errgroup.WithContext(ctx)

	if scenario == storage.TypeUsdToRub {
		g.Go(func() error {
			r, err := s.rates.Rates(gctx)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrRatesUnavailable, err)
			}
			rates = r
			return nil
		})
	}

	if loader, ok := s.model.(pricing.TemplateLoader); ok {
		g.Go(func() error {
			t, err := loader.Load(scenario)
			if err != nil {
				return err
			}
			tpl = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if tpl != nil {
			tpl.Close()
		}
		return nil, nil, err
	}

	return rates, tpl, nil
}

// Preview считает без сохранения и без файла.
func (s *Service) Preview(ctx context.Context, t storage.OrderType, params storage.Parameters) (storage.Parameters, error) {
	const op = "service.calculate.Preview"

	if !t.Valid() {
		return nil, fmt.Errorf("%s: %w: %s", op, pricing.ErrUnknownOrderType, t)
	}

	var rates pricing.Rates
	if t == storage.TypeUsdToRub {
		r, err := s.rates.Rates(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrRatesUnavailable, err)
		}
		rates = r
	}

	res, err := pricing.NativeModel{}.Calculate(ctx, pricing.Input{Type: t, Params: params.WithoutOutputs(), Rates: rates})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return res.Outputs.Apply(res.Derived), nil
}
