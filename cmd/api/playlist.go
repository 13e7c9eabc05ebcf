package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/ewilliams-labs/songle/internal/core/domain"
)

func listPlaylist(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("playlist")
	if input == "" {
		return errors.New("usage: songle playlist <spotify url, uri or id>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	// Preview measurements would outlive this command.
	cfg.Worker.Enabled = false

	d, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	p, err := d.svc.ResolvePlaylist(ctx, input)
	if err != nil {
		return err
	}
	return printPlaylist(cmd.Root().Writer, p, cmd.Bool("all"))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func printPlaylist(w io.Writer, p domain.Playlist, all bool) error {
	playable := p.PlayableTracks()
	fmt.Fprintf(w, "%s %s\n%s\n\n",
		titleStyle.Render(p.Name),
		dimStyle.Render("("+p.ID+")"),
		fmt.Sprintf("%d tracks, %d with previews", len(p.Tracks), len(playable)),
	)

	tracks := playable
	if all {
		tracks = p.Tracks
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tARTIST\tLENGTH\tPREVIEW")
	for i, t := range tracks {
		preview := "-"
		if t.Playable() {
			preview = "yes"
			if t.PreviewSeconds > 0 {
				preview = fmt.Sprintf("%.1fs", t.PreviewSeconds)
			}
		}
		length := (time.Duration(t.DurationMs) * time.Millisecond).Round(time.Second)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, t.Name, t.Artist, length, preview)
	}
	return tw.Flush()
}
