package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/preorder/internal/config"
)

type fakeReporter struct {
	exports   int
	exportErr error
	summary   string
}

func (f *fakeReporter) Export(context.Context, []string) (int, error) {
	f.exports++
	return 3, f.exportErr
}

func (f *fakeReporter) DailySummary(context.Context) (string, error) {
	return f.summary, nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

var daily = config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"}

func TestRunDaily_ExportsAndSends(t *testing.T) {
	reporter := &fakeReporter{summary: "Production for D1: no orders yet."}
	sender := &fakeSender{}
	s, err := NewScheduler(daily, reporter, sender, true, nil)
	require.NoError(t, err)

	s.RunDaily(context.Background())

	assert.Equal(t, 1, reporter.exports)
	assert.Equal(t, []string{"Production for D1: no orders yet."}, sender.sent)
}

func TestRunDaily_ExportFailureStillSends(t *testing.T) {
	reporter := &fakeReporter{summary: "x", exportErr: errors.New("sheets down")}
	sender := &fakeSender{}
	s, err := NewScheduler(daily, reporter, sender, true, nil)
	require.NoError(t, err)

	s.RunDaily(context.Background())

	assert.Len(t, sender.sent, 1)
}

func TestRunDaily_ExportDisabled(t *testing.T) {
	reporter := &fakeReporter{summary: "x"}
	s, err := NewScheduler(daily, reporter, &fakeSender{}, false, nil)
	require.NoError(t, err)

	s.RunDaily(context.Background())

	assert.Zero(t, reporter.exports)
}

func TestNewScheduler_InvalidInputs(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Mars/Olympus"}, &fakeReporter{}, &fakeSender{}, false, nil)
	assert.Error(t, err)

	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "not a schedule", Timezone: "UTC"}, &fakeReporter{}, &fakeSender{}, false, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}
