// Package cli wires the domain services to a cobra command tree. Commands
// are thin: parse flags, call a service, print. All correctness rules live
// in the domain packages.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nkall/chronotrack/internal/config"
	"github.com/nkall/chronotrack/internal/display"
	"github.com/nkall/chronotrack/internal/domain/edit"
	"github.com/nkall/chronotrack/internal/domain/hierarchy"
	"github.com/nkall/chronotrack/internal/domain/timer"
	"github.com/nkall/chronotrack/internal/repository"
)

// App carries the wired services for the command handlers.
type App struct {
	Timer     *timer.Service
	Hierarchy *hierarchy.Service
	Edits     *edit.Service
	Entries   repository.EntryRepository
	Out       display.Printer
	Config    config.Config
}

// Root builds the command tree.
func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "chronotrack",
		Short: "Personal time tracker with hierarchical projects",
		Long: `chronotrack tracks time against hierarchical projects.

Start a timer, pause and resume it, tag and annotate entries, and view
aggregate statistics by tag, project, hour of day, and day of week.

Examples:
  chronotrack start "write report" --tags work,writing
  chronotrack pause
  chronotrack stats projects --period week`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.startCmd(),
		a.pauseCmd(),
		a.resumeCmd(),
		a.stopCmd(),
		a.statusCmd(),
		a.watchCmd(),
		a.listCmd(),
		a.moveCmd(),
		a.deleteCmd(),
		a.editCmd(),
		a.editSegmentCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

func formatSeconds(total int64) string {
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func formatMinutes(minutes float64) string {
	return formatSeconds(int64(minutes * 60))
}

// bar renders a proportional chart bar, capped at width characters.
func bar(value, max float64, width int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := int(value / max * float64(width))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
