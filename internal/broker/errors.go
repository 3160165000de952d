package broker

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

var (
	// ErrConnectionLost marks failures where the transport to the broker broke
	// mid-operation. Sessions should wrap it whenever they can tell.
	ErrConnectionLost = errors.New("broker connection lost")
	// ErrNotConnected is returned by sessions asked to work while disconnected.
	ErrNotConnected = errors.New("not connected")
)

// connectionLossPhrases is the fallback for sessions that only surface
// transport trouble as text.
var connectionLossPhrases = []string{
	"connection reset",
	"connection aborted",
	"connection lost",
	"connection closed",
	"broken pipe",
	"not connected",
	"socket closed",
	"socket is closed",
	"unexpected eof",
	"peer closed",
	"use of closed network connection",
}

// IsConnectionLost classifies err as a broken transport. Typed signals are
// checked first; the phrase match on the message only runs when none apply.
func IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrNotConnected) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if neverConnected(err) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return MatchesConnectionLoss(err.Error())
}

// neverConnected reports failures that happen before any byte reaches the
// broker: name resolution and dialing.
func neverConnected(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

// MatchesConnectionLoss reports whether msg contains a known transport-loss
// phrase, case-insensitively.
func MatchesConnectionLoss(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range connectionLossPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
