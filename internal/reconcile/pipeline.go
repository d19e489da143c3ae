package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freightcalc/internal/billing"
	"freightcalc/internal/config"
	"freightcalc/internal/sheet"
)

// ErrIncompleteInputs mirrors the form check: all three file groups and an
// output path are required.
var ErrIncompleteInputs = errors.New("all input groups and an output path are required")

type TableReader interface {
	ReadAll(paths []string, headerRow int) (*sheet.Table, error)
}

type TableWriter interface {
	Write(path string, t *sheet.Table) error
}

type Pricer interface {
	Process(ctx context.Context, shipments []billing.Shipment) ([]billing.Charge, error)
}

type Notifier interface {
	Done(ctx context.Context, s Summary)
	Failed(ctx context.Context, runID string, err error)
}

// Inputs lists the workbooks for each role. A carries the carrier waybill
// number, B weights and sizes, C system numbers and addresses.
type Inputs struct {
	A      []string
	B      []string
	C      []string
	Output string
}

type Summary struct {
	RunID       string
	Output      string
	Rows        int
	JoinAB      sheet.JoinStats
	JoinABC     sheet.JoinStats
	Freight     decimal.Decimal
	Surcharges  decimal.Decimal
	Total       decimal.Decimal
	Surcharged  int
	RegionCount map[string]int
}

type Pipeline struct {
	columns  config.ColumnsConfig
	sheets   config.SheetsConfig
	reader   TableReader
	writer   TableWriter
	pricer   Pricer
	notifier Notifier
	logger   *zap.Logger
}

func New(
	cfg *config.Config,
	reader TableReader,
	writer TableWriter,
	pricer Pricer,
	notifier Notifier,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		columns:  cfg.Columns,
		sheets:   cfg.Sheets,
		reader:   reader,
		writer:   writer,
		pricer:   pricer,
		notifier: notifier,
		logger:   logger,
	}
}

// Run merges the three sources, prices every joined row and writes the
// enriched table. Nothing is written if any step fails.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Summary, error) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID))

	summary, err := p.run(ctx, log, runID, in)
	if err != nil {
		log.Error("Run failed", zap.Error(err))
		p.notifier.Failed(ctx, runID, err)
		return nil, err
	}

	log.Info("Run completed",
		zap.String("output", summary.Output),
		zap.Int("rows", summary.Rows),
		zap.String("total", summary.Total.String()))
	p.notifier.Done(ctx, *summary)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, runID string, in Inputs) (*Summary, error) {
	const operation = "reconcile.Run"

	if len(in.A) == 0 || len(in.B) == 0 || len(in.C) == 0 || in.Output == "" {
		return nil, fmt.Errorf("%s: %w", operation, ErrIncompleteInputs)
	}

	log.Info("Run started",
		zap.Strings("a", in.A),
		zap.Strings("b", in.B),
		zap.Strings("c", in.C),
		zap.String("output", in.Output))

	key := p.columns.Key

	a, err := p.reader.ReadAll(in.A, p.sheets.AHeaderRow)
	if err != nil {
		return nil, fmt.Errorf("%s: reading A: %w", operation, err)
	}
	a.RenameColumn(p.columns.AKey, key)

	b, err := p.reader.ReadAll(in.B, p.sheets.BHeaderRow)
	if err != nil {
		return nil, fmt.Errorf("%s: reading B: %w", operation, err)
	}

	c, err := p.reader.ReadAll(in.C, p.sheets.CHeaderRow)
	if err != nil {
		return nil, fmt.Errorf("%s: reading C: %w", operation, err)
	}
	c.RenameColumn(p.columns.CKey, key)

	ab, statsAB, err := sheet.InnerJoin(a, b, key)
	if err != nil {
		return nil, fmt.Errorf("%s: joining A and B: %w", operation, err)
	}
	merged, statsABC, err := sheet.InnerJoin(ab, c, key)
	if err != nil {
		return nil, fmt.Errorf("%s: joining C: %w", operation, err)
	}

	if statsAB.Dropped() > 0 || statsABC.Dropped() > 0 {
		log.Warn("Rows dropped by join",
			zap.Int("a_without_b", statsAB.LeftUnmatched),
			zap.Int("b_without_a", statsAB.RightUnmatched),
			zap.Int("ab_without_c", statsABC.LeftUnmatched),
			zap.Int("c_without_ab", statsABC.RightUnmatched))
	}

	shipments, err := p.shipments(merged)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	charges, err := p.pricer.Process(ctx, shipments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if err := p.appendCharges(merged, charges); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if err := p.writer.Write(in.Output, merged); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	summary := summarize(charges)
	summary.RunID = runID
	summary.Output = in.Output
	summary.JoinAB = statsAB
	summary.JoinABC = statsABC

	return summary, nil
}

func (p *Pipeline) shipments(t *sheet.Table) ([]billing.Shipment, error) {
	weights, err := t.Column(p.columns.Weight)
	if err != nil {
		return nil, err
	}
	dims, err := t.Column(p.columns.Dimensions)
	if err != nil {
		return nil, err
	}
	waybills, err := t.Column(p.columns.Key)
	if err != nil {
		return nil, err
	}
	addresses, err := t.Column(p.columns.Address)
	if err != nil {
		return nil, err
	}

	shipments := make([]billing.Shipment, t.Len())
	for i := range shipments {
		shipments[i] = billing.Shipment{
			ActualWeight: weights[i],
			Dimensions:   dims[i],
			WaybillID:    waybills[i],
			Address:      addresses[i],
		}
	}
	return shipments, nil
}

// appendCharges copies the size and weight inputs, then adds the derived
// columns: weight and freight, region and surcharge, total.
func (p *Pipeline) appendCharges(t *sheet.Table, charges []billing.Charge) error {
	dims, err := t.Column(p.columns.Dimensions)
	if err != nil {
		return err
	}
	weights, err := t.Column(p.columns.Weight)
	if err != nil {
		return err
	}

	n := len(charges)
	billable := make([]string, n)
	freights := make([]string, n)
	regions := make([]string, n)
	surcharges := make([]string, n)
	totals := make([]string, n)

	for i, c := range charges {
		billable[i] = c.BillableWeight.String()
		freights[i] = c.Freight.String()
		regions[i] = c.RegionKey
		surcharges[i] = c.Surcharge.String()
		totals[i] = c.Total.String()
	}

	columns := []struct {
		name   string
		values []string
	}{
		{p.columns.DimensionsCopy, dims},
		{p.columns.WeightCopy, weights},
		{p.columns.BillableWeight, billable},
		{p.columns.Freight, freights},
		{p.columns.Region, regions},
		{p.columns.Surcharge, surcharges},
		{p.columns.Total, totals},
	}
	for _, col := range columns {
		if err := t.SetColumn(col.name, col.values); err != nil {
			return err
		}
	}

	return nil
}

func summarize(charges []billing.Charge) *Summary {
	s := &Summary{
		Rows:        len(charges),
		Freight:     decimal.Zero,
		Surcharges:  decimal.Zero,
		Total:       decimal.Zero,
		RegionCount: make(map[string]int),
	}
	for _, c := range charges {
		s.Freight = s.Freight.Add(c.Freight)
		s.Surcharges = s.Surcharges.Add(c.Surcharge)
		s.Total = s.Total.Add(c.Total)
		if c.RegionKey != "" {
			s.Surcharged++
			s.RegionCount[c.RegionKey]++
		}
	}
	return s
}
