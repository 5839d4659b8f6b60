// Package extern implements the external-call primitives spec.md §6 names:
// Verifier (subprocess verification), Persister (JSON persistence), and
// AiCaller (AI backend invocation). Each implements vm.ExternPrimitive and
// is registered into a vm.ExternRegistry at construction (spec.md §9
// "primitives are injected at construction, not discovered dynamically").
package extern

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/qwas982/svm/value"
)

// VerifierTimeout is the subprocess wall-clock budget (spec.md §6).
const VerifierTimeout = 60 * time.Second

// Verifier runs a shell command and reports success by exit code.
type Verifier struct{}

func NewVerifier() *Verifier { return &Verifier{} }

func (v *Verifier) Name() string { return "Verifier" }

// Invoke pops the shell command (string), runs it via /bin/sh -c under a
// 60s timeout, and pushes 1 on a zero exit code. On a nonzero exit or a
// timeout it pushes nothing and returns an error; the VM's ExternCallError
// recovery pushes the 0.
func (v *Verifier) Invoke(pop func() (value.Value, error), push func(value.Value) error) error {
	cmdVal, err := pop()
	if err != nil {
		return fmt.Errorf("verifier: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), VerifierTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", cmdVal.String()) // #nosec G204 -- command is program-supplied by design
	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("verifier: command timed out after %s", VerifierTimeout)
	}
	if runErr != nil {
		return fmt.Errorf("verifier: command failed: %w", runErr)
	}

	if err := push(value.NewInt(1)); err != nil {
		return fmt.Errorf("verifier: %w", err)
	}
	return nil
}
