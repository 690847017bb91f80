package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver_WritesSuccessAndFailure(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "start-session",
		Duration: 3 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"project": "Writing"},
	})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name: "stop-session",
		Err:  errors.New("no session is running"),
	})

	out := buf.String()
	assert.Contains(t, out, "msg=service_use_case")
	assert.Contains(t, out, "use_case=start-session")
	assert.Contains(t, out, "project=Writing")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="no session is running"`)
}

func TestLogUseCaseObserver_NilWriterIsNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))
}
