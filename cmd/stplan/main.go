// Command stplan plans trajectories through space-time scenarios.
//
// Usage:
//
//	stplan plan --scenario merge.yaml
//	stplan plan --config setting.yaml --scenario merge.yaml --plot st.png --json
//	stplan batch --config setting.yaml a.yaml b.yaml c.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
