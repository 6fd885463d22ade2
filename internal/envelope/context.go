package envelope

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// gitTimeout bounds each git invocation; context capture must never stall a
// hook invocation.
const gitTimeout = 500 * time.Millisecond

// CaptureContext collects platform, working directory, and VCS state. Every
// probe is best-effort: a missing git binary or a non-repository directory
// simply leaves the VCS fields empty.
func CaptureContext(ctx context.Context) Context {
	c := Context{Platform: runtime.GOOS}
	if wd, err := os.Getwd(); err == nil {
		c.WorkingDirectory = wd
	}
	if branch, ok := gitOutput(ctx, "rev-parse", "--abbrev-ref", "HEAD"); ok {
		c.VCSBranch = branch
		if status, ok := gitOutput(ctx, "status", "--porcelain"); ok {
			if status == "" {
				c.VCSStatus = "clean"
			} else {
				c.VCSStatus = "dirty"
			}
		}
	}
	return c
}

func gitOutput(ctx context.Context, args ...string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}
