package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Observer receives the raw outcome of every remote call after the
// response body has been read. Observers must not influence control
// flow; they exist so diagnostic echo can be redirected, disabled, or
// asserted against in tests.
type Observer interface {
	Observe(operation string, statusCode int, body []byte)
}

// NopObserver discards all observations.
type NopObserver struct{}

// Observe implements the Observer interface for NopObserver.
func (NopObserver) Observe(string, int, []byte) {}

// EchoObserver pretty-prints every response to a writer. It is the
// sink behind the CLI's --verbose flag.
type EchoObserver struct {
	Out io.Writer
}

// Observe implements the Observer interface for EchoObserver.
func (o *EchoObserver) Observe(operation string, statusCode int, body []byte) {
	fmt.Fprintf(o.Out, "\n[Verbose Mode] %s (status %d)\n", operation, statusCode)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		// Not JSON; echo verbatim.
		fmt.Fprintf(o.Out, "%s\n", body)
		return
	}
	fmt.Fprintf(o.Out, "%s\n", pretty.String())
}
