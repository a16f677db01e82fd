package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// StubFFmpeg writes a fake ffmpeg executable that answers the encoder
// probe with the given lines and prepends its directory to PATH. It
// returns the binary name to configure.
func StubFFmpeg(t testing.TB, encoderLines string) string {
	t.Helper()

	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}

	script := fmt.Sprintf(`#!/bin/sh
if [ "$2" = "-encoders" ]; then
  printf '%%s\n' %q
  exit 0
fi
exit 0
`, encoderLines)

	target := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub ffmpeg: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return "ffmpeg"
}
