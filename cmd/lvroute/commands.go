package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvroute/route"
)

var errBusy = errors.New("another computation is in progress")

func newSolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "solve",
		Short: "Build a tour through every visible marker and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ran, res, err := a.planner.SolveTour()
			if err != nil {
				return err
			}
			if !ran {
				return errBusy
			}
			if err = a.saveRoute(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "solved %d markers: length=%.6f lower-bound=%.6f restart=%d\n",
				len(res.Tour), res.Length, res.LowerBound, res.Restart)
			printRoute(out, a.planner.Route())
			return nil
		},
	}
}

func newExpandCmd(a *app) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Insert nearby markers into the stored route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.loadRoute(false); err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Expand.Threshold
			}
			ran, st, err := a.planner.ExpandRoute(threshold)
			if err != nil {
				return err
			}
			if !ran {
				return errBusy
			}
			if err = a.saveRoute(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "inserted %d of %d candidates (exact segments %d, greedy segments %d)\n",
				st.Inserted, st.Candidates, st.ExactSegments, st.GreedySegments)
			printRoute(out, a.planner.Route())
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "distance from a segment endpoint (default expand.threshold)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.loadRoute(false); err != nil {
				return err
			}
			printRoute(cmd.OutOrStdout(), a.planner.Route())
			return nil
		},
	}
}

func newDeleteMarkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-marker <id>",
		Short: "Remove a marker from the marker file and the stored route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := a.loadRoute(true)
			if err != nil {
				return err
			}
			if !a.store.Remove(args[0]) {
				return fmt.Errorf("marker %q not found", args[0])
			}
			if err = a.store.SaveFile(a.markersPath); err != nil {
				return err
			}
			if loaded {
				if err = a.saveRoute(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			if loaded {
				printRoute(cmd.OutOrStdout(), a.planner.Route())
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored route names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.repo.Names()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func printRoute(w io.Writer, r route.Route) {
	kind := "loop"
	if !r.Loop {
		kind = "path"
	}
	fmt.Fprintf(w, "%s of %d waypoints, length %.6f, direction %+d\n", kind, len(r.Waypoints), r.Length, r.Direction)
	for i, wp := range r.Waypoints {
		p := wp.Pos()
		if id, ok := route.MarkerID(wp); ok {
			fmt.Fprintf(w, "%3d  %-12s (%.4f, %.4f)\n", i, id, p.X, p.Y)
		} else {
			fmt.Fprintf(w, "%3d  %-12s (%.4f, %.4f)\n", i, "-", p.X, p.Y)
		}
	}
}
