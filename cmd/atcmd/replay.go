package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/internal/scenario"
	"github.com/arloliu/go-atcmd/logger"
)

func newReplayCmd() *cobra.Command {
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>...",
		Short: "Replay scripted modem conversations against the engine",
		Long: `Replay one or more scenario files against an engine running on a
simulated modem and a simulated clock, and check every expectation.
No hardware is needed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, showTrace)
		},
	}
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print the trace of every scenario")

	return cmd
}

func runReplay(out, progress io.Writer, files []string, showTrace bool) error {
	scenarios := make([]*scenario.Scenario, 0, len(files))
	steps := 0
	for _, f := range files {
		sc, err := scenario.Load(f)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
		steps += len(sc.Steps)
	}

	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Replaying"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100),
		progressbar.OptionClearOnFinish(),
	)

	r := &scenario.Runner{
		EngineOptions: []atcmd.Option{atcmd.WithLogger(logger.GetLogger())},
		OnStep:        func(scenario.Entry) { _ = bar.Add(1) },
	}

	var results []*scenario.Result
	for _, sc := range scenarios {
		res, err := r.Run(sc)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	_ = bar.Finish()

	failed := 0
	for _, res := range results {
		if showTrace {
			fmt.Fprint(out, res.Text())
		}
		if res.Passed() {
			fmt.Fprintf(out, "PASS %s\n", res.Name)
			continue
		}

		failed++
		fmt.Fprintf(out, "FAIL %s\n", res.Name)
		for _, f := range res.Failures {
			fmt.Fprintf(out, "    %s\n", f)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}

	return nil
}
