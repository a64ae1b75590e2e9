package atcmd

import "fmt"

// Command formatters. Every command ends with CRLF and is passed as is to
// Engine.ExecString.

// CmdAT is the attention command used to check the serial link.
func CmdAT() string { return "AT\r\n" }

// CmdEcho switches command echo on or off.
func CmdEcho(on bool) string {
	return fmt.Sprintf("ATE%d\r\n", boolDigit(on))
}

// CmdCFUNTest asks for the supported functionality levels.
func CmdCFUNTest() string { return "AT+CFUN=?\r\n" }

// CmdCFUNRead asks for the current functionality level.
func CmdCFUNRead() string { return "AT+CFUN?\r\n" }

// CmdCFUNWrite sets the functionality level, resetting the module first
// when reset is true.
func CmdCFUNWrite(level FunctionLevel, reset bool) string {
	return fmt.Sprintf("AT+CFUN=%d,%d\r\n", level, boolDigit(reset))
}

// CmdCPINRead asks for the SIM status.
func CmdCPINRead() string { return "AT+CPIN?\r\n" }

// CmdCPINWrite enters the SIM PIN.
func CmdCPINWrite(pin string) string {
	return fmt.Sprintf("AT+CPIN=%s\r\n", pin)
}

// CmdDDET enables or disables DTMF detection.
func CmdDDET(enable bool) string {
	return fmt.Sprintf("AT+DDET=%d\r\n", boolDigit(enable))
}

// CmdCGREGRead asks for the packet network registration status.
func CmdCGREGRead() string { return "AT+CGREG?\r\n" }

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}
