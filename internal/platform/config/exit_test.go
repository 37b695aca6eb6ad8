package config_test

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/louisbranch/courtroom.space/internal/platform/config"
)

// os.Exit cannot be observed in-process, so the test re-runs itself as a child.
func TestExitfWritesStderrAndExitsOne(t *testing.T) {
	if os.Getenv("COURTROOM_SPACE_EXITF_CHILD") == "1" {
		config.Exitf("fatal: %s", "scene store unavailable")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitfWritesStderrAndExitsOne$")
	cmd.Env = append(os.Environ(), "COURTROOM_SPACE_EXITF_CHILD=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if code := exitErr.ExitCode(); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(string(out), "fatal: scene store unavailable") {
		t.Fatalf("stderr = %q, want fatal message", string(out))
	}
}
