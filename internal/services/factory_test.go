package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/civilex/internal/config"
)

func TestBuild_MockNeedsNoCredentials(t *testing.T) {
	stack, err := Build(context.Background(), config.Config{UseMock: true, UploadBucket: "uploads"})
	require.NoError(t, err)
	defer stack.Close()

	assert.True(t, stack.Mode.IsMock())
	assert.True(t, stack.Orchestrator.Mode().IsMock())

	target, err := stack.Gateway.RequestUploadDestination(context.Background(), "lease.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target.URL, MockUploadPrefix))

	result, err := stack.Orchestrator.Process(context.Background(), "lease.pdf")
	require.NoError(t, err)
	assert.Equal(t, MockProcessResult(), result)

	require.NoError(t, stack.Intake.Process(context.Background(), GCSEvent{Bucket: "uploads", Name: "lease.pdf"}))
}

func TestMode(t *testing.T) {
	assert.Equal(t, "mock", NewMode(true).String())
	assert.Equal(t, "live", NewMode(false).String())
	assert.False(t, Mode{}.IsMock())
}
