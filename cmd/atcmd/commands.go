package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-atcmd/atcmd"
)

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the built-in commands and recognized events",
		Run: func(cmd *cobra.Command, _ []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(w, "COMMAND\tPURPOSE")
			for _, c := range []struct{ cmd, purpose string }{
				{atcmd.CmdAT(), "check the serial link"},
				{atcmd.CmdEcho(false), "disable command echo"},
				{atcmd.CmdCFUNTest(), "supported functionality levels"},
				{atcmd.CmdCFUNRead(), "current functionality level"},
				{atcmd.CmdCFUNWrite(atcmd.FunctionFull, false), "full functionality"},
				{atcmd.CmdCPINRead(), "SIM status"},
				{atcmd.CmdCPINWrite("<pin>"), "enter SIM PIN"},
				{atcmd.CmdDDET(true), "enable DTMF detection"},
				{atcmd.CmdCGREGRead(), "packet network registration"},
			} {
				fmt.Fprintf(w, "%s\t%s\n", strings.TrimSpace(c.cmd), c.purpose)
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, "EVENT\tTOKEN")
			for _, ev := range atcmd.DefaultEvents() {
				fmt.Fprintf(w, "%s\t%s\n", ev.Code, ev.Token)
			}
			_ = w.Flush()
		},
	}
}
