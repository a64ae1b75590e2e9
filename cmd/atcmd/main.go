// Command atcmd talks to AT command modems over a serial port or TCP.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/transport"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Environment fallbacks for the connection flags.
const (
	envPort = "ATCMD_PORT"
	envBaud = "ATCMD_BAUD"
)

type options struct {
	logLevel string
	port     string
	baud     int
	tcp      string
	timeout  time.Duration
	dryRun   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "atcmd",
		Short: "Drive AT command modems from the command line",
		Long: `atcmd sends AT commands to a modem attached to a serial port, or to a
modem emulator reachable over TCP, and reports the replies and the
unsolicited events the modem emits.

The port and baud rate may also be given through the ATCMD_PORT and
ATCMD_BAUD environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.complete(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.StringVarP(&opts.port, "port", "p", "", "Serial port, e.g. /dev/ttyUSB0 (env "+envPort+")")
	flags.IntVarP(&opts.baud, "baud", "b", transport.DefaultBaudRate, "Baud rate (env "+envBaud+")")
	flags.StringVar(&opts.tcp, "tcp", "", "host:port of a TCP modem or serial bridge, instead of --port")
	flags.DurationVarP(&opts.timeout, "timeout", "t", atcmd.DefaultTimeout, "Command timeout")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Talk to a simulated modem instead of real hardware")

	rootCmd.AddCommand(
		newListCmd(),
		newExecCmd(opts),
		newUnlockCmd(opts),
		newConsoleCmd(opts),
		newReplayCmd(),
		newCommandsCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// complete applies the environment fallbacks and installs the logger.
func (o *options) complete(cmd *cobra.Command) error {
	level, ok := logger.ParseLevel(o.logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", o.logLevel)
	}
	logger.SetDefault(logger.NewSlog(level, false))

	if o.port == "" {
		o.port = os.Getenv(envPort)
	}
	if v := os.Getenv(envBaud); v != "" && !cmd.Flags().Changed("baud") {
		baud, err := strconv.Atoi(v)
		if err != nil || baud <= 0 {
			return fmt.Errorf("invalid %s %q", envBaud, v)
		}
		o.baud = baud
	}

	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "atcmd %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
