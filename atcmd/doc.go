// Package atcmd implements a non-blocking command/event engine for modems
// driven by line-oriented AT commands.
//
// An [Engine] owns one receive buffer and borrows one [transport.Transport].
// A caller sends a command with [Engine.Exec] and then polls
// [Engine.CheckStatus] from its own loop until the command completes:
//
//	eng, err := atcmd.New(t, atcmd.WithTimeout(time.Second))
//	if err != nil {
//	    return err
//	}
//	if err := eng.ExecString(atcmd.CmdCPINRead()); err != nil {
//	    return err
//	}
//	for {
//	    switch res := eng.Poll(); {
//	    case res == atcmd.EventCPIN:
//	        ev, err := eng.ParseEvent(res)
//	        // ... inspect ev.Value.(atcmd.SIMStatus) ...
//	    case res == atcmd.ResultPending:
//	        continue
//	    default:
//	        return nil // ResultOK, ResultError or ResultTimeout
//	    }
//	}
//
// # Classification
//
// Every poll first drains whatever the transport reports as available, then
// classifies the whole buffer from scratch:
//
//  1. a command in flight whose timeout has been reached yields ResultTimeout;
//  2. the event table is scanned in order; the first token found yields its
//     event code, or ResultPending when its line is not terminated yet;
//  3. with a command in flight, the earliest terminal line (OK, ERROR,
//     +CME ERROR or +CMS ERROR) yields ResultOK or ResultError and is
//     consumed together with everything before it;
//  4. otherwise ResultPending while a command is in flight and ResultNoEvent
//     while idle.
//
// Events therefore take priority over command completion. Detecting an event
// does not consume it: until [Engine.ParseEvent] is called, every poll
// reports the same event again. ParseEvent removes only the event line, so
// a terminal line received before it is still reported by the next poll.
//
// The engine is not safe for concurrent use. See package session for a
// goroutine-safe front end.
package atcmd
