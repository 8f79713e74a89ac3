package credentials

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// fromSops decrypts the configured .env file with the external sops binary
// and scans the line-oriented KEY=value output for the requested key. The
// decrypted content only ever lives in memory.
func (r *Resolver) fromSops(ctx context.Context, key string) (string, error) {
	if r.sopsFile == "" {
		return "", errors.New("SOPS_FILE is not configured")
	}
	if _, err := os.Stat(r.sopsFile); err != nil {
		return "", fmt.Errorf("sops file not found: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sops", "-d", r.sopsFile)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("sops decryption failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	return scanDotenv(&stdout, key), nil
}

// scanDotenv finds a key in line-oriented KEY=value content. Comment lines
// are skipped.
func scanDotenv(content *bytes.Buffer, key string) string {
	scanner := bufio.NewScanner(content)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if found && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
