package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/pipeline"
	"github.com/matzehuels/netgrid/pkg/render/text"
)

// viewCommand creates the view command for browsing a layout in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		frame   string
		plain   bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "view [layout.json]",
		Short: "Browse the frames of a layout in the terminal",
		Long: `Browse the frames of a layout in the terminal.

Opens an interactive frame list; the selected frame is drawn with box
characters. With --plain a single frame (--frame, default top) is printed to
stdout instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := graph.ReadLayoutFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			if plain {
				f, err := pipeline.SelectFrame(l, frame)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text.Render(*f, text.Options{Color: !noColor}))
				return nil
			}
			return c.runView(cmd, l, frame, !noColor)
		},
	}

	cmd.Flags().StringVar(&frame, "frame", "", "cell path of the frame to show first (default: top)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print one frame and exit")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	_ = cmd.RegisterFlagCompletionFunc("frame", completeFrames)

	return cmd
}

func (c *CLI) runView(cmd *cobra.Command, l graph.Layout, frame string, color bool) error {
	m := NewFrameListModel(l, color)
	if frame != "" {
		if _, err := pipeline.SelectFrame(l, frame); err != nil {
			return err
		}
		for i := range l.Frames {
			if l.Frames[i].Cell == frame {
				m.Cursor = i
				m.Offset = max(0, i-m.Height+1)
			}
		}
	}

	c.Logger.Debug("opening viewer", "frames", len(l.Frames))
	_, err := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
	return err
}
