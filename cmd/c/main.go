// Command c is the unprivileged client: it gathers input, calls the
// daemon over the system bus, and renders the result (spec.md §4.H).
package main

import (
	"os"

	"github.com/command-line-assistant/clad/internal/client"
)

func main() {
	os.Exit(client.Execute())
}
