package notify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommand is the desktop notification program used when none is set.
const DefaultCommand = "notify-send"

// Command runs an external program with the title and body appended to Args.
type Command struct {
	Name string   // Program; DefaultCommand when empty
	Args []string // Leading arguments, e.g. "--urgency=critical"
}

// Notify runs the program and waits for it to exit.
func (c *Command) Notify(ctx context.Context, title, body string) error {
	name := c.Name
	if name == "" {
		name = DefaultCommand
	}
	args := append(append([]string{}, c.Args...), title, body)

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run %s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}
