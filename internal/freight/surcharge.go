package freight

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SurchargeRegion adds a fixed fee to addresses starting with Prefix.
type SurchargeRegion struct {
	Prefix string
	Amount decimal.Decimal
}

// SurchargeTable is scanned in order; the first matching prefix wins.
type SurchargeTable []SurchargeRegion

func DefaultSurchargeTable() SurchargeTable {
	return SurchargeTable{
		{Prefix: "北海道", Amount: decimal.NewFromInt(20)},
		{Prefix: "沖縄", Amount: decimal.NewFromInt(70)},
	}
}

// Region is the resolved surcharge. An empty Key means no region matched.
type Region struct {
	Key    string
	Amount decimal.Decimal
}

type SurchargeResolver struct {
	table SurchargeTable
}

func NewSurchargeResolver(table SurchargeTable) *SurchargeResolver {
	owned := make(SurchargeTable, len(table))
	copy(owned, table)
	return &SurchargeResolver{table: owned}
}

func (r *SurchargeResolver) Resolve(address string) Region {
	for _, region := range r.table {
		if strings.HasPrefix(address, region.Prefix) {
			return Region{Key: region.Prefix, Amount: region.Amount}
		}
	}
	return Region{Amount: decimal.Zero}
}
