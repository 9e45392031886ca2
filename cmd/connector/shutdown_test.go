package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/spounge-ai/postgresql-connector/pkg/patterns/lifecycle"
	"github.com/stretchr/testify/assert"
)

type recordingResource struct {
	name     string
	startErr error
	mu       *sync.Mutex
	events   *[]string
}

func (r *recordingResource) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.events = append(*r.events, event+" "+r.name)
}

func (r *recordingResource) Start(context.Context) error {
	r.record("start")
	return r.startErr
}

func (r *recordingResource) Stop(context.Context) error {
	r.record("stop")
	return nil
}

func (r *recordingResource) Health(context.Context) lifecycle.HealthStatus {
	return lifecycle.HealthStatus{Ready: true}
}

func newResources(names ...string) ([]lifecycle.ManagedResource, *[]string) {
	var (
		mu     sync.Mutex
		events []string
	)
	resources := make([]lifecycle.ManagedResource, 0, len(names))
	for _, name := range names {
		resources = append(resources, &recordingResource{name: name, mu: &mu, events: &events})
	}
	return resources, &events
}

func TestServeUntilStoppedOnSignal(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	resources, events := newResources("monitor", "server")
	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM

	code := serveUntilStopped(context.Background(), logger, stop, make(chan error), resources, time.Second)

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"start monitor", "start server", "stop server", "stop monitor"}, *events)
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("stopping connector service")))
}

func TestServeUntilStoppedOnServerFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	resources, events := newResources("monitor", "server")
	serverErrs := make(chan error, 1)
	serverErrs <- errors.New("listener closed")

	code := serveUntilStopped(context.Background(), logger, make(chan os.Signal), serverErrs, resources, time.Second)

	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"start monitor", "start server", "stop server", "stop monitor"}, *events)
	assert.Contains(t, logs.String(), "server failed")
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("stopping connector service")))
}

func TestServeUntilStoppedWhenStartFails(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	resources, events := newResources("monitor", "server")
	resources[0].(*recordingResource).startErr = errors.New("pool exhausted")

	code := serveUntilStopped(context.Background(), logger, make(chan os.Signal), make(chan error), resources, time.Second)

	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"start monitor", "stop server", "stop monitor"}, *events)
	assert.Contains(t, logs.String(), "error starting resource")
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("stopping connector service")))
}
