package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"freightcalc/internal/reconcile"
)

// Multi fans a notification out to every notifier in order.
type Multi []reconcile.Notifier

func (m Multi) Done(ctx context.Context, s reconcile.Summary) {
	for _, n := range m {
		n.Done(ctx, s)
	}
}

func (m Multi) Failed(ctx context.Context, runID string, err error) {
	for _, n := range m {
		n.Failed(ctx, runID, err)
	}
}

// Log reports run outcomes to the operator's console.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Done(_ context.Context, s reconcile.Summary) {
	l.logger.Info(FormatDone(s), zap.String("run_id", s.RunID))
}

func (l *Log) Failed(_ context.Context, runID string, err error) {
	l.logger.Error(FormatFailed(err), zap.String("run_id", runID))
}

func FormatDone(s reconcile.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "处理完成，文件已保存至：%s\n", s.Output)
	fmt.Fprintf(&b, "行数：%d\n", s.Rows)
	fmt.Fprintf(&b, "运费合计：%s\n", s.Freight.StringFixed(2))
	fmt.Fprintf(&b, "额外费用合计：%s\n", s.Surcharges.StringFixed(2))
	fmt.Fprintf(&b, "总费用：%s", s.Total.StringFixed(2))

	if len(s.RegionCount) > 0 {
		regions := make([]string, 0, len(s.RegionCount))
		for r := range s.RegionCount {
			regions = append(regions, r)
		}
		sort.Strings(regions)
		for _, r := range regions {
			fmt.Fprintf(&b, "\n- %s：%d", r, s.RegionCount[r])
		}
	}

	if dropped := s.JoinAB.Dropped() + s.JoinABC.Dropped(); dropped > 0 {
		fmt.Fprintf(&b, "\n⚠️ 未匹配行：%d", dropped)
	}

	return b.String()
}

func FormatFailed(err error) string {
	return "❌ 错误：" + err.Error()
}
