package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nkall/chronotrack/internal/domain/timer"
)

func (a *App) startCmd() *cobra.Command {
	var notes string
	var tags []string
	var parentID string

	cmd := &cobra.Command{
		Use:   "start <title>",
		Short: "Start tracking a new entry (stops the current one first)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := timer.StartRequest{
				Title: strings.Join(args, " "),
				Notes: notes,
				Tags:  tags,
			}
			if parentID != "" {
				req.ParentID = &parentID
			}
			e, err := a.Timer.Start(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.Out.Successf("started %s (%s)", a.Out.Bold(e.Title), shortID(e.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "notes for the entry")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma-separated tags")
	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "parent entry id")
	return cmd
}

func (a *App) pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Timer.Pause(cmd.Context()); err != nil {
				return err
			}
			snap := a.Timer.Current()
			if snap.Entry == nil {
				a.Out.Warning("nothing to pause")
				return nil
			}
			a.Out.Successf("paused %s at %s", a.Out.Bold(snap.Entry.Title), formatSeconds(snap.Entry.Duration))
			return nil
		},
	}
}

func (a *App) resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume [entry-id]",
		Short: "Resume the paused timer, or start tracking an existing entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				e, err := a.Timer.ResumeEntry(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.Out.Successf("tracking %s (%s)", a.Out.Bold(e.Title), shortID(e.ID))
				return nil
			}
			if err := a.Timer.Resume(cmd.Context()); err != nil {
				return err
			}
			snap := a.Timer.Current()
			a.Out.Successf("resumed %s", a.Out.Bold(snap.Entry.Title))
			return nil
		},
	}
}

func (a *App) stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the current timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.Timer.Current()
			if err := a.Timer.Stop(cmd.Context()); err != nil {
				return err
			}
			if snap.Entry == nil {
				a.Out.Warning("nothing to stop")
				return nil
			}
			a.Out.Successf("stopped %s after %s", a.Out.Bold(snap.Entry.Title), formatSeconds(snap.ElapsedSeconds))
			return nil
		},
	}
}

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the running timer, updating elapsed time in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.Timer.Current()
			if snap.State != timer.StateRunning {
				a.Out.Warning("no running timer")
				return nil
			}
			ticker := timer.NewTicker(a.Timer, a.Config.Timer.TickInterval, a.Config.Timer.FlushInterval, nil)
			title := snap.Entry.Title
			ticker.Run(cmd.Context(), func(t timer.Tick) {
				a.Out.Printf("\r%s  %s", title, formatSeconds(t.ElapsedSeconds))
			})
			a.Out.Println()
			return nil
		},
	}
}

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current timer state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.Timer.Current()
			switch snap.State {
			case timer.StateIdle:
				a.Out.Println("idle")
			case timer.StateRunning:
				a.Out.Printf("%s %s  %s\n", a.Out.Bold("tracking"), snap.Entry.Title, formatSeconds(snap.ElapsedSeconds))
			case timer.StatePaused:
				a.Out.Printf("%s %s  %s\n", a.Out.Faint("paused"), snap.Entry.Title, formatSeconds(snap.ElapsedSeconds))
			}
			if snap.Entry != nil && len(snap.Entry.Tags) > 0 {
				a.Out.Println(a.Out.Faint("tags: " + strings.Join(snap.Entry.Tags, ", ")))
			}
			return nil
		},
	}
}
