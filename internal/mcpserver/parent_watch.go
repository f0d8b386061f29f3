package mcpserver

import (
	"context"
	"os"
	"time"

	"lodestar/internal/logging"
)

// WatchParent cancels the server when the parent process dies, so editor
// restarts do not leave orphaned stdio servers behind.
//
// It must NOT read from stdin: the MCP stdio transport owns stdin
// exclusively, and stealing bytes would corrupt the JSON-RPC stream. Parent
// death is detected by polling the parent PID instead.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	log := logging.New("mcp")
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, shutting down", "was_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
