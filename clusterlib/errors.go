package clusterlib

import (
	"errors"
	"fmt"
)

// usage errors, detected before any selection or balancing work begins
var (
	ErrMultipleChangeTargets = errors.New("cannot send all remaining funds to more than one address")
	ErrBurningInTxOuts       = errors.New("token burning is not allowed in txouts")
	ErrScriptSrcAddress      = errors.New("source address cannot be a script address")
	ErrNoQueryTarget         = errors.New("either address, txin or utxo need to be specified")
	ErrNoTxSource            = errors.New("either tx body file or tx file is needed")
	ErrUnknownCommandEra     = errors.New("unknown command era")
)

// data-dependent errors
var (
	ErrNoInputUTxO        = errors.New("no input UTxO")
	ErrNoUTxOReturned     = errors.New("no UTxO returned for address")
	ErrMissingOutputCoins = errors.New("not all output coins are present in input UTxOs")
	ErrOnlyDatumUTxOs     = errors.New("the only matching UTxOs have datum")
	ErrTxNotOnChain       = errors.New("transaction didn't make it to the chain")
)

// CLIError reports a failed `cardano-cli` invocation. It carries the executed
// command and the captured stderr so callers can distinguish external-tool
// failures from errors raised by this library itself.
type CLIError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *CLIError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("cli command `%v` failed: %v", e.Cmd, e.Stderr)
	}
	return fmt.Sprintf("cli command `%v` failed: %v", e.Cmd, e.Err)
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

func newCLIError(cmd, stderr string, err error) *CLIError {
	return &CLIError{Cmd: cmd, Stderr: stderr, Err: err}
}
