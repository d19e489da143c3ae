package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"freightcalc/internal/freight"
)

// ErrValidation is returned for non-positive weights when strict mode is on.
var ErrValidation = errors.New("validation failed")

type RateCalculator interface {
	Compute(actualWeight decimal.Decimal, dimensions, waybillID string) (freight.Quote, error)
}

type SurchargeResolver interface {
	Resolve(address string) freight.Region
}

// Shipment is one joined input row. ActualWeight is the raw cell text.
type Shipment struct {
	ActualWeight string
	Dimensions   string
	WaybillID    string
	Address      string
}

type Charge struct {
	Tier           freight.TierKind
	BillableWeight decimal.Decimal
	Freight        decimal.Decimal
	RegionKey      string
	Surcharge      decimal.Decimal
	Total          decimal.Decimal
}

// RowError ties a failure to the row that caused it.
type RowError struct {
	Row       int
	WaybillID string
	Err       error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (waybill %q): %v", e.Row, e.WaybillID, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Workers > 1 prices rows concurrently. Output order is unchanged.
	Workers int
	// RejectNonPositiveWeight fails rows whose actual weight is <= 0.
	RejectNonPositiveWeight bool
}

type Processor struct {
	rates      RateCalculator
	surcharges SurchargeResolver
	opts       Options
	logger     *zap.Logger
}

func NewProcessor(rates RateCalculator, surcharges SurchargeResolver, opts Options, logger *zap.Logger) *Processor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Processor{
		rates:      rates,
		surcharges: surcharges,
		opts:       opts,
		logger:     logger,
	}
}

// Price computes the charge for a single shipment.
func (p *Processor) Price(s Shipment) (Charge, error) {
	weight, err := freight.ParseWeight(s.ActualWeight)
	if err != nil {
		return Charge{}, err
	}
	if p.opts.RejectNonPositiveWeight && !weight.IsPositive() {
		return Charge{}, fmt.Errorf("actual weight %s is not positive: %w", weight, ErrValidation)
	}

	quote, err := p.rates.Compute(weight, s.Dimensions, s.WaybillID)
	if err != nil {
		return Charge{}, err
	}

	region := p.surcharges.Resolve(s.Address)

	return Charge{
		Tier:           quote.Tier,
		BillableWeight: quote.BillableWeight,
		Freight:        quote.Freight,
		RegionKey:      region.Key,
		Surcharge:      region.Amount,
		Total:          quote.Freight.Add(region.Amount),
	}, nil
}

// Process prices every shipment. The first failing row aborts the batch and
// no charges are returned.
func (p *Processor) Process(ctx context.Context, shipments []Shipment) ([]Charge, error) {
	const operation = "billing.Process"

	charges := make([]Charge, len(shipments))

	if p.opts.Workers == 1 || len(shipments) < 2 {
		for i, s := range shipments {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%s: %w", operation, err)
			}
			c, err := p.price(i, s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", operation, err)
			}
			charges[i] = c
		}
		return charges, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, s := range shipments {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := p.price(i, s)
			if err != nil {
				return err
			}
			charges[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	// Cancelled before any row failed.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return charges, nil
}

func (p *Processor) price(i int, s Shipment) (Charge, error) {
	c, err := p.Price(s)
	if err != nil {
		p.logger.Error("Failed to price shipment",
			zap.Int("row", i),
			zap.String("waybill", s.WaybillID),
			zap.Error(err))
		return Charge{}, &RowError{Row: i, WaybillID: s.WaybillID, Err: err}
	}

	p.logger.Debug("Shipment priced",
		zap.Int("row", i),
		zap.String("waybill", s.WaybillID),
		zap.Stringer("tier", c.Tier),
		zap.String("billable_weight", c.BillableWeight.String()),
		zap.String("total", c.Total.String()))

	return c, nil
}
