package freight

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TierKind tags which pricing bracket a shipment falls into.
type TierKind int

const (
	CarrierTier TierKind = iota
	LightTier
	HeavyTier
)

func (k TierKind) String() string {
	switch k {
	case CarrierTier:
		return "carrier"
	case LightTier:
		return "light"
	case HeavyTier:
		return "heavy"
	default:
		return "unknown"
	}
}

// RateTier prices the first increment at BasePrice and every further
// increment at IncrementPrice.
type RateTier struct {
	Key            string
	IncrementKg    decimal.Decimal
	BasePrice      decimal.Decimal
	IncrementPrice decimal.Decimal
}

// Charge bills weight rounded up to the next increment boundary.
func (t RateTier) Charge(weight decimal.Decimal) (decimal.Decimal, error) {
	const operation = "freight.RateTier.Charge"

	rounded, err := RoundUpToIncrement(weight, t.IncrementKg)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: tier %q: %w", operation, t.Key, err)
	}

	increments := rounded.Div(t.IncrementKg)
	extra := increments.Sub(decimal.NewFromInt(1)).Mul(t.IncrementPrice)

	return t.BasePrice.Add(extra), nil
}

// RateTable is the fixed set of tiers. Shipments whose waybill starts with
// CarrierPrefix use Carrier; everything else is split at HeavyThreshold.
type RateTable struct {
	CarrierPrefix  string
	HeavyThreshold decimal.Decimal
	Carrier        RateTier
	Light          RateTier
	Heavy          RateTier
}

func DefaultRateTable() RateTable {
	return RateTable{
		CarrierPrefix:  "3724",
		HeavyThreshold: decimal.NewFromInt(5),
		Carrier:        newTier("3724", "0.1", 17, 2),
		Light:          newTier("tier-light", "0.5", 32, 4),
		Heavy:          newTier("tier-heavy", "0.5", 34, 4),
	}
}

func newTier(key, increment string, base, step int64) RateTier {
	return RateTier{
		Key:            key,
		IncrementKg:    decimal.RequireFromString(increment),
		BasePrice:      decimal.NewFromInt(base),
		IncrementPrice: decimal.NewFromInt(step),
	}
}

// IsCarrier reports whether the waybill belongs to the carrier tier.
func (t RateTable) IsCarrier(waybillID string) bool {
	return t.CarrierPrefix != "" && strings.HasPrefix(waybillID, t.CarrierPrefix)
}

// SelectTier picks the tier for a waybill and its (already adjusted) weight.
// The heavy boundary is inclusive: exactly HeavyThreshold is heavy.
func (t RateTable) SelectTier(weight decimal.Decimal, waybillID string) TierKind {
	if t.IsCarrier(waybillID) {
		return CarrierTier
	}
	if weight.LessThan(t.HeavyThreshold) {
		return LightTier
	}
	return HeavyTier
}

func (t RateTable) Tier(kind TierKind) (RateTier, error) {
	switch kind {
	case CarrierTier:
		return t.Carrier, nil
	case LightTier:
		return t.Light, nil
	case HeavyTier:
		return t.Heavy, nil
	default:
		return RateTier{}, fmt.Errorf("unknown tier kind %d", int(kind))
	}
}

// Validate checks every tier has a positive increment.
func (t RateTable) Validate() error {
	for _, tier := range []RateTier{t.Carrier, t.Light, t.Heavy} {
		if !tier.IncrementKg.IsPositive() {
			return fmt.Errorf("tier %q has increment %s: %w", tier.Key, tier.IncrementKg, ErrInvalidIncrement)
		}
	}
	return nil
}
