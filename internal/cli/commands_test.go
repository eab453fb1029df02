package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/civilex/internal/client"
	"github.com/Lllllllleong/civilex/internal/config"
	"github.com/Lllllllleong/civilex/internal/models"
)

func runWithServer(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	original := newClient
	newClient = func(config.Config) *client.Client {
		return client.New(srv.URL, srv.Client(), client.Timeouts{})
	}
	t.Cleanup(func() { newClient = original })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestHealthCmd(t *testing.T) {
	out, err := runWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.HealthResponse{OK: true, UseMock: true})
	}, "health")

	require.NoError(t, err)
	assert.Contains(t, out, `"use_mock": true`)
}

func TestUploadCmd_MockDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))

	out, err := runWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lease.pdf", r.URL.Query().Get("filename"))
		_ = json.NewEncoder(w).Encode(models.UploadTarget{URL: "/mock-upload/lease.pdf", Method: "PUT", Headers: map[string]string{}})
	}, "upload", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Mock destination for lease.pdf")
}

func TestProcessCmd(t *testing.T) {
	out, err := runWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.FallbackResult("summary"))
	}, "process", "lease.pdf")

	require.NoError(t, err)
	assert.Contains(t, out, `"tldr": "summary"`)
}

func TestAskCmd_MissingTextFile(t *testing.T) {
	_, err := runWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, "ask", filepath.Join(t.TempDir(), "missing.txt"), "notice?")

	require.Error(t, err)
}

func TestProcessCmd_RequiresArg(t *testing.T) {
	_, err := runWithServer(t, func(w http.ResponseWriter, r *http.Request) {}, "process")
	require.Error(t, err)
}
