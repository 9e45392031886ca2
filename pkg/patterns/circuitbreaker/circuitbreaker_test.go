package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spounge-ai/postgresql-connector/pkg/patterns/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail(context.Context) (struct{}, error) { return struct{}{}, errBoom }
func pass(context.Context) (struct{}, error) { return struct{}{}, nil }

func TestBreakerOpensAndRecovers(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string
	cb := circuitbreaker.New[struct{}](2, time.Minute,
		circuitbreaker.WithClock(func() time.Time { return now }),
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)
	ctx := context.Background()

	_, err := cb.Execute(ctx, fail)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())

	_, err = cb.Execute(ctx, fail)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())

	_, err = cb.Execute(ctx, pass)
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)

	now = now.Add(time.Minute)
	_, err = cb.Execute(ctx, pass)
	require.NoError(t, err)
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestBreakerReopensOnFailedTrial(t *testing.T) {
	now := time.Unix(0, 0)
	cb := circuitbreaker.New[struct{}](1, time.Second, circuitbreaker.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, _ = cb.Execute(ctx, fail)
	now = now.Add(time.Second)

	_, err := cb.Execute(ctx, fail)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())

	_, err = cb.Execute(ctx, pass)
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	cb := circuitbreaker.New[struct{}](2, time.Minute)
	ctx := context.Background()

	_, _ = cb.Execute(ctx, fail)
	_, _ = cb.Execute(ctx, pass)
	_, _ = cb.Execute(ctx, fail)

	assert.Equal(t, circuitbreaker.StateClosed, cb.State())
}
