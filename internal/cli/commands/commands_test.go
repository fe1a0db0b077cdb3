package commands

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coreader-client/internal/bootstrap"
	"coreader-client/internal/config"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/server"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func startBackend(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{DevServer: config.DevServerConfig{Port: "0", CorsAllowedOrigins: "*"}}
	log := logger.NewNopLogger()
	srv := server.New(cfg, bootstrap.NewDevServerContainer(cfg, log), log)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)
	t.Cleanup(func() { _ = srv.Shutdown() })
	return "http://" + ln.Addr().String()
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_FILE_PATH", filepath.Join(t.TempDir(), "coreader.log"))
	t.Setenv("NATS_URL", "")
	t.Setenv("OTEL_ENABLED", "false")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArg  string
		wantOk   bool
	}{
		{line: "what is this?", wantOk: false},
		{line: "/files", wantName: "files", wantOk: true},
		{line: "/upload ./docs/a b.txt", wantName: "upload", wantArg: "./docs/a b.txt", wantOk: true},
		{line: "/TOGGLE abc", wantName: "toggle", wantArg: "abc", wantOk: true},
	}

	for _, tt := range tests {
		name, arg, ok := parseCommand(tt.line)
		assert.Equal(t, tt.wantOk, ok, tt.line)
		assert.Equal(t, tt.wantName, name, tt.line)
		assert.Equal(t, tt.wantArg, arg, tt.line)
	}
}

func TestChatUploadAndAsk(t *testing.T) {
	backend := startBackend(t)
	doc := filepath.Join(t.TempDir(), "budget.txt")
	require.NoError(t, os.WriteFile(doc, []byte("The budget is 40k."), 0o644))

	script := strings.Join([]string{
		"/upload " + doc,
		"/files",
		"what is the budget?",
		"/quit",
	}, "\n")

	out, err := runRoot(t, script, "chat", "--server", backend)
	require.NoError(t, err)

	assert.Contains(t, out, "budget.txt")
	assert.Contains(t, out, "assistant> From budget.txt: The budget is 40k.")
}

func TestChatWithoutActiveFile(t *testing.T) {
	backend := startBackend(t)

	out, err := runRoot(t, "hi\n/quit\n", "chat", "--server", backend)
	require.NoError(t, err)
	assert.Contains(t, out, "assistant> Please upload a file so I can answer.")
}

func TestFilesCommands(t *testing.T) {
	backend := startBackend(t)
	doc := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(doc, []byte("Notes."), 0o644))

	out, err := runRoot(t, "", "files", "upload", doc, "--server", backend)
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded notes.txt.")

	out, err = runRoot(t, "", "files", "list", "--server", backend)
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "active")

	out, err = runRoot(t, "", "files", "toggle", "missing-id", "--server", backend)
	require.Error(t, err)
	assert.Contains(t, out, "No uploaded file with id missing-id.")
}

func TestInvalidProtocolFlag(t *testing.T) {
	_, err := runRoot(t, "", "files", "list", "--protocol", "sse")
	assert.Error(t, err)
}
