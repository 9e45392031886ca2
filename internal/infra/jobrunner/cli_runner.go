package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/spounge-ai/postgresql-connector/internal/domain"
)

// waitDelay bounds how long output copying may outlive a killed process.
const waitDelay = 10 * time.Second

// warningLine matches the exception line a raised UserWarning leaves at the
// end of a traceback. Non-fatal "file:line: UserWarning:" notices do not match.
var warningLine = regexp.MustCompile(`^(?:[\w.]+\.)?UserWarning: (.*)$`)

// withheldEnv lists variables of this service that the connector never needs.
var withheldEnv = map[string]struct{}{
	"POSTGRES_PASSWORD":     {},
	"AUDIT_DATABASE_URL":    {},
	"PUB_KEY_PATH":          {},
	"PUB_KEY_SSM_PARAMETER": {},
}

// CLIRunner runs the connector command line tool and maps its exit status
// onto the JobRunner contract. A non-zero exit whose stderr contains a
// final "UserWarning: <message>" line is reported as a *domain.WarningError.
type CLIRunner struct {
	binary   string
	maxBytes int
	logger   *slog.Logger
}

func NewCLIRunner(binary string, maxBytes int, logger *slog.Logger) *CLIRunner {
	if maxBytes <= 0 {
		maxBytes = 64 * 1024
	}
	return &CLIRunner{
		binary:   binary,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (r *CLIRunner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	stdout := newTailBuffer(r.maxBytes)
	stderr := newTailBuffer(r.maxBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = childEnv(os.Environ())
	cmd.WaitDelay = waitDelay

	r.logger.DebugContext(ctx, "starting connector",
		"binary", r.binary,
		"args", RedactArgs(args),
	)

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if stdout.Truncated || stderr.Truncated {
		r.logger.DebugContext(ctx, "connector output truncated",
			"limit_bytes", r.maxBytes,
			"stdout_truncated", stdout.Truncated,
			"stderr_truncated", stderr.Truncated,
		)
	}

	if err == nil {
		r.logger.DebugContext(ctx, "connector finished",
			"duration_ms", duration.Milliseconds(),
			"stdout_tail", lastLine(stdout.String()),
		)
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("connector aborted after %s: %w", duration.Round(time.Millisecond), ctxErr)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("failed to start connector %s: %w", r.binary, err)
	}

	if message, ok := findWarning(stderr.String()); ok {
		return &domain.WarningError{Message: message}
	}

	return fmt.Errorf("connector exited with code %d: %s", exitErr.ExitCode(), lastLine(stderr.String()))
}

// findWarning reports the message of a UserWarning that terminated the
// connector. Only the last non-empty stderr line is considered.
func findWarning(output string) (string, bool) {
	m := warningLine.FindStringSubmatch(lastLine(output))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// childEnv drops the service's own secrets from env.
func childEnv(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, withheld := withheldEnv[key]; withheld {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// lastLine returns the last non-empty line of output.
func lastLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimRight(lines[i], "\r \t"); line != "" {
			return line
		}
	}
	return ""
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf       []byte
	limit     int
	Truncated bool
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
		b.Truncated = true
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
