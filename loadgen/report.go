package loadgen

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// Summary 多次執行同一階段的彙總
type Summary struct {
	Name                 string
	Runs                 int
	AvgMs, MinMs, MaxMs  float64
	AvgOpsPerSec         float64
	Ops, Hits, FinalSize int
}

// Summarize 依階段彙總多次 Run 的結果，階段順序同第一份報告
func Summarize(reports []Report) []Summary {
	if len(reports) == 0 {
		return nil
	}
	var out []Summary
	for _, first := range reports[0].Phases {
		var ms []float64
		var opsSec float64
		s := Summary{Name: first.Name}
		for _, r := range reports {
			p, ok := r.Phase(first.Name)
			if !ok {
				continue
			}
			ms = append(ms, float64(p.Elapsed.Microseconds())/1000.0)
			opsSec += p.OpsPerSec()
			s.Ops, s.Hits, s.FinalSize = p.Ops, p.Hits, p.Size
		}
		sort.Float64s(ms)
		s.Runs = len(ms)
		s.MinMs, s.MaxMs = ms[0], ms[len(ms)-1]
		for _, v := range ms {
			s.AvgMs += v
		}
		s.AvgMs /= float64(len(ms))
		s.AvgOpsPerSec = opsSec / float64(len(ms))
		out = append(out, s)
	}
	return out
}

// Render 以表格輸出彙總結果
func Render(w io.Writer, threads int, sums []Summary) {
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", threads),
			fmt.Sprintf("%d", s.Runs),
			fmt.Sprintf("%d", s.Ops),
			fmt.Sprintf("%.3f", s.AvgMs),
			fmt.Sprintf("%.3f", s.MinMs),
			fmt.Sprintf("%.3f", s.MaxMs),
			fmt.Sprintf("%.2f", s.AvgOpsPerSec),
			fmt.Sprintf("%d", s.Hits),
			fmt.Sprintf("%d", s.FinalSize),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Phase", "Threads", "Runs", "Ops", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "Hits", "Size"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
