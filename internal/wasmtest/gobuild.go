package wasmtest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// Import paths of the Go guests in this module.
const (
	ConformanceGuest = "github.com/CosmWasm/recovervm/cmd/secp256k1recover"
	GoGuest          = "github.com/CosmWasm/recovervm/internal/wasmtest/goguest"
)

// BuildGoGuest compiles the Go guest at importPath for GOOS=wasip1 as a reactor
// module and returns its bytes. The test is skipped when no Go toolchain able to
// build it is available.
func BuildGoGuest(t testing.TB, importPath string) []byte {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Go guest build in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skipf("go toolchain not found: %v", err)
	}

	out := filepath.Join(t.TempDir(), filepath.Base(importPath)+".wasm")
	cmd := exec.Command(goBin, "build", "-buildmode=c-shared", "-o", out, importPath)
	cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm", "CGO_ENABLED=0")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot build %s for wasip1: %v\n%s", importPath, err, output)
	}

	wasm, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading %s: %v", out, err)
	}
	return wasm
}
