package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kkkkikiki/loyalty/internal/config"
	"github.com/kkkkikiki/loyalty/internal/service"
)

type fakeReassessor struct {
	result   service.ReassessResult
	err      error
	calls    int
	deadline bool
}

func (f *fakeReassessor) ReassessAllCustomers(ctx context.Context) (service.ReassessResult, error) {
	f.calls++
	_, f.deadline = ctx.Deadline()
	return f.result, f.err
}

func testConfig() config.ReassessConfig {
	return config.ReassessConfig{
		Enabled:  true,
		Schedule: "0 3 * * *",
		Timeout:  time.Minute,
		Workers:  2,
	}
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Schedule = "every night"

	_, err := New(cfg, &fakeReassessor{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewAcceptsDescriptors(t *testing.T) {
	cfg := testConfig()
	cfg.Schedule = "@daily"

	s, err := New(cfg, &fakeReassessor{}, zap.NewNop())
	require.NoError(t, err)
	s.Stop(context.Background())
}

func TestRunLogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fake := &fakeReassessor{result: service.ReassessResult{Processed: 5, Changed: 2}}

	s, err := New(testConfig(), fake, zap.New(core))
	require.NoError(t, err)
	defer s.Stop(context.Background())

	s.run()
	assert.Equal(t, 1, fake.calls)
	assert.True(t, fake.deadline, "runs are bounded by the configured timeout")

	done := logs.FilterMessage("scheduled reassessment completed").All()
	require.Len(t, done, 1)
	assert.Equal(t, int64(5), done[0].ContextMap()["processed"])
	assert.Equal(t, int64(2), done[0].ContextMap()["changed"])
}

func TestRunLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fake := &fakeReassessor{err: errors.New("db down")}

	s, err := New(testConfig(), fake, zap.New(core))
	require.NoError(t, err)
	defer s.Stop(context.Background())

	s.run()
	assert.Equal(t, 1, logs.FilterMessage("scheduled reassessment failed").Len())
}

func TestStartDisabledAndStopTwice(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := testConfig()
	cfg.Enabled = false

	s, err := New(cfg, &fakeReassessor{}, zap.New(core))
	require.NoError(t, err)

	s.Start()
	assert.Equal(t, 1, logs.FilterMessage("scheduled reassessment disabled").Len())

	s.Stop(context.Background())
	s.Stop(context.Background())
	assert.Error(t, s.base.Err(), "stop cancels in-flight runs")
}
