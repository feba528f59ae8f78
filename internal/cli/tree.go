package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkall/chronotrack/internal/domain/edit"
	"github.com/nkall/chronotrack/internal/domain/entry"
)

func (a *App) listCmd() *cobra.Command {
	var recent int
	var childrenOf string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []entry.Entry
			var err error
			switch {
			case childrenOf != "":
				entries, err = a.Hierarchy.Children(cmd.Context(), childrenOf)
			case recent > 0:
				entries, err = a.Edits.Recent(cmd.Context(), recent)
			default:
				entries, err = a.Hierarchy.Tree(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				a.Out.Println("no entries")
				return nil
			}
			for _, e := range entries {
				indent := strings.Repeat("  ", e.Depth)
				marker := " "
				if e.Active {
					marker = a.Out.Bold("▸")
				}
				line := indent + marker + " " + e.Title + "  " + a.Out.Faint(shortID(e.ID)+"  "+formatSeconds(e.Duration))
				if len(e.Tags) > 0 {
					line += "  " + a.Out.Faint("["+strings.Join(e.Tags, ",")+"]")
				}
				a.Out.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&recent, "recent", "r", 0, "show only the N most recently touched entries")
	cmd.Flags().StringVarP(&childrenOf, "children", "c", "", "show only the direct children of an entry")
	return cmd
}

func (a *App) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <entry-id> <parent-id|->",
		Short: "Move an entry under a new parent ('-' makes it a root)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parentID *string
			if args[1] != "-" {
				parentID = &args[1]
			}
			if err := a.Hierarchy.AssignParent(cmd.Context(), args[0], parentID); err != nil {
				return err
			}
			a.Out.Successf("moved %s", shortID(args[0]))
			return nil
		},
	}
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an entry (children move up to its parent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Hierarchy.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.Out.Successf("deleted %s", shortID(args[0]))
			return nil
		},
	}
}

func (a *App) editCmd() *cobra.Command {
	var title, notes string
	var tags []string

	cmd := &cobra.Command{
		Use:   "edit <entry-id>",
		Short: "Edit an entry's title, notes, or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := edit.Request{}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
			}
			if cmd.Flags().Changed("tags") {
				req.Tags = tags
			}
			e, err := a.Edits.Apply(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			a.Out.Successf("updated %s", a.Out.Bold(e.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "replacement tag set")
	return cmd
}

func (a *App) editSegmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit-segment <entry-id> <index> <start> <end>",
		Short: "Rewrite a closed segment's time range (RFC 3339 timestamps)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid segment index %q", args[1])
			}
			start, err := time.Parse(time.RFC3339, args[2])
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			end, err := time.Parse(time.RFC3339, args[3])
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}
			e, err := a.Edits.EditSegment(cmd.Context(), args[0], index, start, end)
			if err != nil {
				return err
			}
			a.Out.Successf("segment %d of %s now %s", index, a.Out.Bold(e.Title), formatSeconds(e.Segments[index].Duration))
			return nil
		},
	}
}
