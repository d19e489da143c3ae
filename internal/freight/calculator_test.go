package freight

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute_Examples(t *testing.T) {
	calc := NewRateCalculator(DefaultRateTable())

	t.Run("bulky parcel lands in heavy tier", func(t *testing.T) {
		q, err := calc.Compute(dec("4.443"), "36*35*33*1", "4811000001")
		require.NoError(t, err)
		assert.Equal(t, HeavyTier, q.Tier)
		assert.Equal(t, "tier-heavy", q.TierKey)
		assertDecimal(t, "5.6865", q.BillableWeight)
		assertDecimal(t, "78", q.Freight)
	})

	t.Run("carrier waybill", func(t *testing.T) {
		q, err := calc.Compute(dec("0.739"), "65*55*3*1", "3724001")
		require.NoError(t, err)
		assert.Equal(t, CarrierTier, q.Tier)
		assertDecimal(t, "0.739", q.BillableWeight)
		assertDecimal(t, "31", q.Freight)
	})

	t.Run("small parcel without dimensions", func(t *testing.T) {
		q, err := calc.Compute(dec("0.739"), "", "4811000002")
		require.NoError(t, err)
		assert.Equal(t, LightTier, q.Tier)
		assertDecimal(t, "0.739", q.BillableWeight)
		// 0.739 -> 1.0 -> two increments
		assertDecimal(t, "36", q.Freight)
	})
}

func TestCompute_CarrierIgnoresDimensions(t *testing.T) {
	calc := NewRateCalculator(DefaultRateTable())

	for _, dims := range []string{"", "200*200*200*3", "10*10*10*1", "garbage"} {
		t.Run(dims, func(t *testing.T) {
			q, err := calc.Compute(dec("2.25"), dims, "3724-ABC")
			require.NoError(t, err)
			assert.Equal(t, CarrierTier, q.Tier)
			assertDecimal(t, "2.25", q.BillableWeight)
			// 2.25 -> 2.3 -> 23 increments
			assertDecimal(t, "61", q.Freight)
		})
	}
}

func TestCompute_TierBoundary(t *testing.T) {
	calc := NewRateCalculator(DefaultRateTable())

	q, err := calc.Compute(dec("5"), "", "100")
	require.NoError(t, err)
	assert.Equal(t, HeavyTier, q.Tier)
	assertDecimal(t, "70", q.Freight)

	q, err = calc.Compute(dec("4.999999"), "", "100")
	require.NoError(t, err)
	assert.Equal(t, LightTier, q.Tier)
	assertDecimal(t, "68", q.Freight)
}

func TestCompute_ExactDecimalIncrements(t *testing.T) {
	calc := NewRateCalculator(DefaultRateTable())

	// 1.1/0.1 is 11.000000000000002 in binary floating point, which would
	// bill an extra increment.
	q, err := calc.Compute(dec("1.1"), "", "3724999")
	require.NoError(t, err)
	assertDecimal(t, "37", q.Freight)

	q, err = calc.Compute(dec("0.3"), "", "3724999")
	require.NoError(t, err)
	assertDecimal(t, "21", q.Freight)
}

func TestCompute_VolumetricOnIncrementBoundary(t *testing.T) {
	calc := NewRateCalculator(DefaultRateTable())

	// 1 kg plus 12000 cm3 averages to exactly 1.5 kg, three light increments.
	q, err := calc.Compute(dec("1"), "100*40*1*3", "4811")
	require.NoError(t, err)
	assert.Equal(t, LightTier, q.Tier)
	assertDecimal(t, "1.5", q.BillableWeight)
	assertDecimal(t, "40", q.Freight)
}

func TestCompute_NonPositiveWeightPropagates(t *testing.T) {
	calc := NewRateCalculator(DefaultRateTable())

	q, err := calc.Compute(dec("0"), "", "100")
	require.NoError(t, err)
	assertDecimal(t, "0", q.BillableWeight)
	assertDecimal(t, "28", q.Freight)

	q, err = calc.Compute(dec("-1"), "", "100")
	require.NoError(t, err)
	assertDecimal(t, "-1", q.BillableWeight)
	assertDecimal(t, "20", q.Freight)
}

func TestCompute_ZeroIncrement(t *testing.T) {
	table := DefaultRateTable()
	table.Light.IncrementKg = decimal.Zero

	_, err := NewRateCalculator(table).Compute(dec("1"), "", "100")
	assert.True(t, errors.Is(err, ErrInvalidIncrement))

	// Other tiers are unaffected.
	_, err = NewRateCalculator(table).Compute(dec("6"), "", "100")
	assert.NoError(t, err)
}

func TestVolumetricWeight(t *testing.T) {
	tests := []struct {
		name   string
		actual string
		dims   string
		want   string
	}{
		{"sum exactly 100", "3", "30*30*40*1", "3"},
		{"sum below limit", "3", "10*10*10*5", "3"},
		{"sum above limit", "4.443", "36*35*33*1", "5.6865"},
		{"quantity multiplies size weight", "1", "50*40*30*2", "10.5"},
		{"spaces around tokens", "1", " 50 * 40 * 30 * 2 ", "10.5"},
		{"empty", "2", "", "2"},
		{"three tokens", "2", "36*35*33", "2"},
		{"five tokens", "2", "36*35*33*1*1", "2"},
		{"non integer token", "2", "36.5*35*33*1", "2"},
		{"letters", "2", "a*b*c*d", "2"},
		{"other separator", "2", "36x35x33x1", "2"},
		{"zero quantity", "4", "60*60*60*0", "2"},
		{"lands on increment", "1", "100*40*1*3", "1.5"},
		{"beyond int64 volume", "1", "3000000*3000000*3000000*1", "2250000000000000.5"},
		{"beyond int64 sum", "1", "9223372036854775807*9223372036854775807*1*0", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, VolumetricWeight(dec(tt.actual), tt.dims))
		})
	}
}

func TestRoundUpToIncrement(t *testing.T) {
	t.Run("rounds up, never down", func(t *testing.T) {
		got, err := RoundUpToIncrement(dec("5.6865"), dec("0.5"))
		require.NoError(t, err)
		assertDecimal(t, "6", got)

		got, err = RoundUpToIncrement(dec("0.739"), dec("0.1"))
		require.NoError(t, err)
		assertDecimal(t, "0.8", got)

		got, err = RoundUpToIncrement(dec("0.001"), dec("0.5"))
		require.NoError(t, err)
		assertDecimal(t, "0.5", got)
	})

	t.Run("idempotent on exact multiples", func(t *testing.T) {
		for _, inc := range []string{"0.1", "0.25", "0.5", "1", "2.5"} {
			for k := int64(1); k <= 50; k++ {
				value := dec(inc).Mul(decimal.NewFromInt(k))
				got, err := RoundUpToIncrement(value, dec(inc))
				require.NoError(t, err)
				assert.True(t, value.Equal(got), "inc %s k %d: got %s", inc, k, got)
			}
		}
	})

	t.Run("zero increment", func(t *testing.T) {
		for _, v := range []string{"0", "1", "-3.5", "1000000"} {
			_, err := RoundUpToIncrement(dec(v), decimal.Zero)
			assert.ErrorIs(t, err, ErrInvalidIncrement, fmt.Sprintf("value %s", v))
		}
	})
}

func TestParseWeight(t *testing.T) {
	w, err := ParseWeight(" 4.443 ")
	require.NoError(t, err)
	assertDecimal(t, "4.443", w)

	w, err = ParseWeight("12")
	require.NoError(t, err)
	assertDecimal(t, "12", w)

	for _, raw := range []string{"", "abc", "4,443", "1kg"} {
		_, err := ParseWeight(raw)
		assert.ErrorIs(t, err, ErrTypeConversion, raw)
	}
}
