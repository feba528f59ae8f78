package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkall/chronotrack/internal/domain/stats"
)

func (a *App) statsCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "stats <tags|projects|hours|days|weekdays>",
		Short: "Show aggregate statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := stats.ParsePeriod(period)
			if err != nil {
				return err
			}
			entries, err := a.Edits.List(cmd.Context())
			if err != nil {
				return err
			}
			window := stats.Resolve(p, time.Now())

			switch args[0] {
			case "tags":
				a.printTagTotals(stats.TagTotals(entries, window))
			case "projects":
				a.printRollup(stats.ProjectRollup(entries, window))
			case "hours":
				a.printHours(stats.HourOfDay(entries, window))
			case "days":
				a.printDays(stats.DailySeries(entries, window, stats.DefaultMovingWindow))
			case "weekdays":
				a.printWeekdays(stats.WeekdayAverages(entries, window))
			default:
				return fmt.Errorf("unknown stats view %q", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(stats.PeriodWeek), "today, week, month, year, or all")
	return cmd
}

func (a *App) printTagTotals(totals []stats.TagTotal) {
	if len(totals) == 0 {
		a.Out.Println("no tracked time in window")
		return
	}
	max := float64(totals[0].Seconds)
	for _, t := range totals {
		a.Out.Printf("%-20s %10s  %s\n", t.Tag, formatSeconds(t.Seconds), bar(float64(t.Seconds), max, 30))
	}
}

func (a *App) printRollup(rollup stats.Rollup) {
	if rollup.TotalSeconds == 0 {
		a.Out.Println("no tracked time in window")
		return
	}
	a.Out.Printf("total %s\n", a.Out.Bold(formatSeconds(rollup.TotalSeconds)))
	var walk func(nodes []*stats.RollupNode, depth int)
	walk = func(nodes []*stats.RollupNode, depth int) {
		for _, node := range nodes {
			indent := ""
			for i := 0; i < depth; i++ {
				indent += "  "
			}
			a.Out.Printf("%s%-30s %10s %6.1f%%\n", indent, node.Title, formatSeconds(node.TotalSeconds), node.Percent)
			walk(node.Children, depth+1)
		}
	}
	walk(rollup.Roots, 0)
}

func (a *App) printHours(buckets []stats.HourBucket) {
	var max float64
	for _, b := range buckets {
		if b.AverageMinutes > max {
			max = b.AverageMinutes
		}
	}
	for _, b := range buckets {
		a.Out.Printf("%02d:00 %10s  %s\n", b.Hour, formatMinutes(b.AverageMinutes), bar(b.AverageMinutes, max, 30))
	}
}

func (a *App) printWeekdays(buckets []stats.WeekdayBucket) {
	var max float64
	for _, b := range buckets {
		if b.AverageMinutes > max {
			max = b.AverageMinutes
		}
	}
	for _, b := range buckets {
		a.Out.Printf("%-9s %10s  %s\n", b.Weekday.String(), formatMinutes(b.AverageMinutes), bar(b.AverageMinutes, max, 30))
	}
}

func (a *App) printDays(points []stats.SeriesPoint) {
	var max float64
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}
	for _, p := range points {
		avg := ""
		if p.MovingAverage != nil {
			avg = a.Out.Faint(fmt.Sprintf(" avg %s", formatMinutes(*p.MovingAverage)))
		}
		a.Out.Printf("%s %10s  %s%s\n", p.Label, formatMinutes(p.Value), bar(p.Value, max, 30), avg)
	}
}
