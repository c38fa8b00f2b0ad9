package testutil

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// Execute runs c with args and returns everything written to stdout, the
// JSON log lines included, together with the command error.
func Execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// Commands fall back to os.Stdout only without an explicit writer.
	c.SetOut(nil)
	c.SetErr(nil)
	c.SetIn(nil)
	c.SetArgs(args)
	err = c.Execute()

	_ = w.Close()
	out := <-outC

	return strings.TrimSpace(out), err
}

// WriteAddressFile writes one address per line to a file under t.TempDir.
func WriteAddressFile(t *testing.T, addresses ...string) string {
	t.Helper()
	path := t.TempDir() + "/addresses.txt"
	if err := os.WriteFile(path, []byte(strings.Join(addresses, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
