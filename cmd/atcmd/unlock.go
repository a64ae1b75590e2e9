package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/workflow"
)

// unlockPollInterval is how often the workflow tasks are polled.
const unlockPollInterval = 5 * time.Millisecond

func newUnlockCmd(opts *options) *cobra.Command {
	var (
		pin     string
		echoOff bool
		full    bool
	)

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Bring the modem up: check the link, unlock the SIM, set functionality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			t, err := opts.dial(ctx)
			if err != nil {
				return err
			}
			defer t.Close()

			eng, err := atcmd.New(t, atcmd.WithTimeout(opts.timeout), atcmd.WithLogger(logger.GetLogger()))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			m := &workflow.Modem{
				Engine: eng,
				Sink: func(ev atcmd.Event) {
					fmt.Fprintf(out, "%s %s\n", ev.Code, eventText(ev))
				},
			}

			sched := workflow.NewScheduler(m.PINUnlock(pin))
			if echoOff {
				sched.Add(m.EchoMode(false))
			}
			if full {
				sched.Add(m.SetFunctionality(atcmd.FunctionFull))
			}

			if err := sched.Run(ctx, unlockPollInterval); err != nil {
				return err
			}
			fmt.Fprintln(out, "SIM ready")

			return nil
		},
	}
	cmd.Flags().StringVar(&pin, "pin", "", "SIM PIN, used only when the SIM asks for it")
	cmd.Flags().BoolVar(&echoOff, "echo-off", false, "Disable command echo")
	cmd.Flags().BoolVar(&full, "full", false, "Switch to full functionality (AT+CFUN=1,0)")

	return cmd
}
