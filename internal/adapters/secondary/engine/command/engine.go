// Package command runs an external analytical engine as a subprocess.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	output "dataset-artifact-service/internal/core/ports/output"
)

const maxStderr = 2048

type engine struct {
	path    string
	args    []string
	timeout time.Duration
}

// New returns a Processor that runs command once per dataset with the
// arguments
//
//	input_path namespace normalized_hint classification_hint parallel_hint
//
// appended to any arguments already in command. The process must print a
// JSON ProcessResponse on stdout. A zero timeout means no limit beyond ctx.
func New(command string, timeout time.Duration) (output.Processor, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("engine command is empty")
	}
	return &engine{path: fields[0], args: fields[1:], timeout: timeout}, nil
}

func (e *engine) Process(ctx context.Context, req output.ProcessRequest) (*output.ProcessResponse, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.args...),
		req.InputPath, req.Namespace, req.NormalizedHint, req.ClassificationHint, req.ParallelHint)
	cmd := exec.CommandContext(ctx, e.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	log.WithFields(log.Fields{
		"command":    e.path,
		"latency_ms": time.Since(started).Milliseconds(),
	}).Debug("engine command finished")

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("engine command: %w", ctx.Err())
		}
		return nil, fmt.Errorf("engine command: %w: %s", err, tail(stderr.String()))
	}

	var resp output.ProcessResponse
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &resp); err != nil {
		return nil, fmt.Errorf("decode engine output: %w", err)
	}
	return &resp, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return s
}
