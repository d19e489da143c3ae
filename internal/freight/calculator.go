package freight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Volumetric pricing kicks in once L+W+H exceeds this many centimetres.
const volumetricSizeLimit = 100

var (
	volumetricLimit   = decimal.NewFromInt(volumetricSizeLimit)
	volumetricDivisor = decimal.NewFromInt(6000)
	// (actual + vol/6000) / 2 == (actual*6000 + vol) / 12000
	volumetricAverage = decimal.NewFromInt(12000)
)

// Quote is the result of pricing one shipment. BillableWeight is the weight
// the tier was chosen on, before rounding to the tier increment.
type Quote struct {
	Tier           TierKind
	TierKey        string
	BillableWeight decimal.Decimal
	Freight        decimal.Decimal
}

type RateCalculator struct {
	table RateTable
}

func NewRateCalculator(table RateTable) *RateCalculator {
	return &RateCalculator{table: table}
}

func (c *RateCalculator) Table() RateTable {
	return c.table
}

func (c *RateCalculator) Compute(actualWeight decimal.Decimal, dimensions, waybillID string) (Quote, error) {
	weight := actualWeight
	if !c.table.IsCarrier(waybillID) {
		weight = VolumetricWeight(actualWeight, dimensions)
	}

	kind := c.table.SelectTier(weight, waybillID)
	tier, err := c.table.Tier(kind)
	if err != nil {
		return Quote{}, err
	}

	charge, err := tier.Charge(weight)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Tier:           kind,
		TierKey:        tier.Key,
		BillableWeight: weight,
		Freight:        charge,
	}, nil
}

// VolumetricWeight averages the actual weight with L*W*H/6000*Qty when the
// package is bulky. Missing or malformed dimensions leave the weight as is.
func VolumetricWeight(actual decimal.Decimal, dimensions string) decimal.Decimal {
	length, width, height, quantity, ok := ParseDimensions(dimensions)
	if !ok {
		return actual
	}

	l := decimal.NewFromInt(length)
	w := decimal.NewFromInt(width)
	h := decimal.NewFromInt(height)
	if l.Add(w).Add(h).LessThanOrEqual(volumetricLimit) {
		return actual
	}

	// Divide once; 1/6000 does not terminate in decimal.
	volume := l.Mul(w).Mul(h).Mul(decimal.NewFromInt(quantity))

	return actual.Mul(volumetricDivisor).Add(volume).Div(volumetricAverage)
}

// ParseDimensions splits "L*W*H*Qty" into four integers.
func ParseDimensions(dimensions string) (length, width, height, quantity int64, ok bool) {
	if dimensions == "" {
		return 0, 0, 0, 0, false
	}

	parts := strings.Split(dimensions, "*")
	if len(parts) != 4 {
		return 0, 0, 0, 0, false
	}

	var values [4]int64
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		values[i] = v
	}

	return values[0], values[1], values[2], values[3], true
}

// RoundUpToIncrement rounds value up to the next multiple of increment.
func RoundUpToIncrement(value, increment decimal.Decimal) (decimal.Decimal, error) {
	if increment.IsZero() {
		return decimal.Zero, ErrInvalidIncrement
	}
	return value.Div(increment).Ceil().Mul(increment), nil
}

// ParseWeight reads a weight cell. Surrounding whitespace is ignored.
func ParseWeight(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", raw, ErrTypeConversion)
	}
	return d, nil
}
