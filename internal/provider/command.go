package provider

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/Ckrest/graph-lib/internal/errors"
)

// CommandConfig configures a shell-command poller.
type CommandConfig struct {
	// Command is run through `sh -c` each cycle.
	Command string
	// Mode selects how stdout is parsed. Default ModeScalar.
	Mode Mode
	// KeyPath is the dotted path for ModeStructured.
	KeyPath string
	// Pattern is the regexp (with one capture group) for ModePattern.
	Pattern string
	// PollInterval between cycles. Default 1s.
	PollInterval time.Duration
	// Timeout per invocation. Default 5s.
	Timeout time.Duration
	// HistorySize is the rolling buffer capacity in samples. Default 60.
	HistorySize int
}

func (c CommandConfig) withDefaults() CommandConfig {
	if c.Mode == "" {
		c.Mode = ModeScalar
	}
	return c
}

// Command polls a shell command on a fixed cadence and parses its standard
// output into samples.
type Command struct {
	*poller
	cfg    CommandConfig
	parser *Parser
}

// NewCommand validates the configuration and builds the provider. Malformed
// parse-mode arguments fail here, never per cycle.
func NewCommand(cfg CommandConfig) (*Command, error) {
	errFactory := errors.New()

	cfg = cfg.withDefaults()
	if cfg.Command == "" {
		return nil, errFactory.New(ErrMissingCommand)
	}

	parser, err := NewParser(cfg.Mode, cfg.KeyPath, cfg.Pattern)
	if err != nil {
		return nil, err
	}

	c := &Command{
		cfg:    cfg,
		parser: parser,
	}
	c.poller = newPoller("command", cfg.PollInterval, cfg.Timeout, cfg.HistorySize, c.readOnce)

	return c, nil
}

// readOnce runs the command under the cycle deadline and parses stdout.
// Launch failure, non-zero exit and timeout are all transient.
func (c *Command) readOnce(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	cmd := exec.CommandContext(ctx, "sh", "-c", c.cfg.Command)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, errFactory.WithData(ErrExecTimeout, struct {
				Command string
				Timeout time.Duration
			}{Command: c.cfg.Command, Timeout: c.timeout})
		}

		return 0, errFactory.Wrap(ErrExecFailed, err)
	}

	return c.parser.Parse(stdout.String())
}
