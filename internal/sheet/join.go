package sheet

import "fmt"

// JoinStats counts rows that found no partner on the other side.
type JoinStats struct {
	Matched        int
	LeftUnmatched  int
	RightUnmatched int
}

func (s JoinStats) Dropped() int {
	return s.LeftUnmatched + s.RightUnmatched
}

// InnerJoin merges right into left on key. Left row order is kept and a key
// present several times on both sides yields every pairing. Non-key columns
// present on both sides get "_x" (left) and "_y" (right) suffixes. Rows with
// an empty key never match.
func InnerJoin(left, right *Table, key string) (*Table, JoinStats, error) {
	const operation = "sheet.InnerJoin"

	lk, err := left.ColumnIndex(key)
	if err != nil {
		return nil, JoinStats{}, fmt.Errorf("%s: left: %w", operation, err)
	}
	rk, err := right.ColumnIndex(key)
	if err != nil {
		return nil, JoinStats{}, fmt.Errorf("%s: right: %w", operation, err)
	}

	shared := make(map[string]bool)
	for _, c := range left.Columns {
		if c != key && right.HasColumn(c) {
			shared[c] = true
		}
	}

	out := &Table{}
	for _, c := range left.Columns {
		if shared[c] {
			c += "_x"
		}
		out.Columns = append(out.Columns, c)
	}
	for i, c := range right.Columns {
		if i == rk {
			continue
		}
		if shared[c] {
			c += "_y"
		}
		out.Columns = append(out.Columns, c)
	}

	byKey := make(map[string][]int)
	for i, row := range right.Rows {
		if k := row[rk]; k != "" {
			byKey[k] = append(byKey[k], i)
		}
	}

	var stats JoinStats
	usedRight := make(map[int]bool)

	for _, lrow := range left.Rows {
		matches := byKey[lrow[lk]]
		if lrow[lk] == "" || len(matches) == 0 {
			stats.LeftUnmatched++
			continue
		}
		for _, ri := range matches {
			usedRight[ri] = true
			rrow := right.Rows[ri]

			cells := make([]string, 0, len(out.Columns))
			cells = append(cells, lrow...)
			for i, v := range rrow {
				if i != rk {
					cells = append(cells, v)
				}
			}
			out.Rows = append(out.Rows, cells)
			stats.Matched++
		}
	}
	stats.RightUnmatched = len(right.Rows) - len(usedRight)

	return out, stats, nil
}
