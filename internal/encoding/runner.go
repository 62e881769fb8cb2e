package encoding

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

const maxErrorOutput = 2048

// DefaultCommandRunner runs commands with os/exec. On failure the tail of the
// output is included in the error.
func DefaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		tail := strings.TrimSpace(string(output))
		if len(tail) > maxErrorOutput {
			tail = "..." + tail[len(tail)-maxErrorOutput:]
		}
		return output, fmt.Errorf("%w: %s", err, tail)
	}
	return output, nil
}
