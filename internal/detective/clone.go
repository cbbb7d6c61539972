package detective

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// materialize makes the audited repository available on disk. A local
// directory is used in place; a remote URL is cloned into a fresh temporary
// directory with an argument-vector git invocation, never a shell. The
// returned cleanup removes the temporary clone and is a no-op for local
// paths.
func materialize(ctx context.Context, repoURL string) (string, func(), error) {
	if info, err := os.Stat(repoURL); err == nil && info.IsDir() {
		return repoURL, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "tribunal-clone-*")
	if err != nil {
		return "", nil, fmt.Errorf("clone: temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	cmd := exec.CommandContext(ctx, "git", "clone", "--quiet", repoURL, dir)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		if ctx.Err() != nil {
			return "", nil, fmt.Errorf("clone: %s: %w", repoURL, ctx.Err())
		}
		return "", nil, fmt.Errorf("clone: %s: %v: %s", repoURL, err, strings.TrimSpace(stderr.String()))
	}
	return dir, cleanup, nil
}
