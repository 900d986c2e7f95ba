package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datadash/internal/config"
	"github.com/JonMunkholm/datadash/internal/metrics"
)

const salesCSV = "region,units,price\nnorth,3,9.5\nsouth,5,7.25\nnorth,4,8\n"

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
		},
		Ingest: config.IngestConfig{
			Encodings:   DefaultEncodings,
			PreviewRows: 2,
		},
		Session: config.SessionConfig{
			TTL:           time.Hour,
			MaxSessions:   10,
			SweepInterval: time.Minute,
		},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(testConfig(), nil)
	require.NoError(t, err)
	return svc
}

func TestNewService_RejectsUnknownEncoding(t *testing.T) {
	cfg := testConfig()
	cfg.Ingest.Encodings = []string{"utf-8", "ebcdic"}

	_, err := NewService(cfg, nil)
	assert.Error(t, err)
}

func TestService_CreateSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, sess.Format)
	assert.Equal(t, []string{"utf-8", "latin1", "iso-8859-1", "cp1252"}, svc.Encodings())

	_, err = svc.CreateSession(ctx, "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestService_CreateSessionTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 8
	svc, err := NewService(cfg, nil)
	require.NoError(t, err)

	_, err = svc.CreateSession(context.Background(), "big.csv", strings.NewReader(salesCSV))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, "FILE001", MapError(err).Code)
}

func TestService_Analyze(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	a, err := svc.Analyze(ctx, sess.ID, ChartRequest{Kind: ChartBar})
	require.NoError(t, err)
	require.NoError(t, a.LoadErr)

	assert.Equal(t, "utf-8", a.Load.Encoding)
	assert.Len(t, a.Preview, 2)
	assert.Equal(t, []string{"north", "3", "9.5"}, a.Preview[0])
	require.Len(t, a.Info, 3)
	assert.Equal(t, "numeric (integer)", a.Info[1].Type)

	require.NotNil(t, a.Stats)
	assert.Len(t, a.Stats.Columns, 2)
	assert.Equal(t, "region", a.Chart.X)
	assert.NoError(t, a.ChartErr)
}

func TestService_AnalyzeAppliesDirectives(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	require.NoError(t, svc.SetDirectives(ctx, sess.ID, map[string]TypeDirective{
		"units":  ToString,
		"region": ToNumeric,
		"ghost":  ToCategory,
	}))

	a, err := svc.Analyze(ctx, sess.ID, ChartRequest{Kind: ChartHistogram, X: "units"})
	require.NoError(t, err)

	require.Len(t, a.Coercions, 3)
	assert.Equal(t, "region", a.Coercions[0].Column)
	assert.True(t, a.Coercions[0].OK())
	assert.Equal(t, "units", a.Coercions[1].Column)
	assert.True(t, a.Coercions[1].OK())
	assert.Equal(t, "ghost", a.Coercions[2].Column)
	assert.ErrorIs(t, a.Coercions[2].Err, ErrColumnNotFound)

	// Preview and info show the file as loaded.
	assert.Equal(t, "numeric (integer)", a.Info[1].Type)

	info, ok := AsInfo(a.ChartErr)
	require.True(t, ok)
	assert.Equal(t, "The histogram column `units` must be numerical.", info.Message)
}

func TestService_AnalyzeReportsLoadFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "blank.csv", strings.NewReader("  \n"))
	require.NoError(t, err)

	a, err := svc.Analyze(ctx, sess.ID, ChartRequest{Kind: ChartBar})
	require.NoError(t, err)
	assert.ErrorIs(t, a.LoadErr, ErrEmptyFile)
	assert.Nil(t, a.Table)

	_, err = svc.Chart(ctx, sess.ID, ChartRequest{Kind: ChartBar})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestService_ChartAndDescribe(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	data, err := svc.Chart(ctx, sess.ID, ChartRequest{Kind: ChartBar, X: "region", Y: "units"})
	require.NoError(t, err)
	assert.Equal(t, []string{"north", "south"}, data.Categories)
	assert.Equal(t, []float64{3.5, 5}, data.Values)

	desc, err := svc.Describe(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "units", desc.Columns[0].Column)
	assert.InDelta(t, 4.0, desc.Columns[0].Mean, 1e-9)

	_, err = svc.Chart(ctx, "missing", ChartRequest{Kind: ChartBar})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_LimiterBusy(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxConcurrent = 1
	cfg.Upload.MaxWaitTime = 10 * time.Millisecond
	svc, err := NewService(cfg, nil)
	require.NoError(t, err)
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	require.True(t, svc.Limiter().TryAcquire())
	defer svc.Limiter().Release()

	_, err = svc.Analyze(ctx, sess.ID, ChartRequest{Kind: ChartBar})
	assert.ErrorIs(t, err, ErrTooManyAnalyses)
}

func TestService_SweepSessions(t *testing.T) {
	m := metrics.New()
	svc, err := NewService(testConfig(), m)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateSession(ctx, "a.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	_, err = svc.CreateSession(ctx, "b.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	assert.Equal(t, 0, svc.sweepSessions(time.Now()))
	assert.Equal(t, 2, svc.sweepSessions(time.Now().Add(2*time.Hour)))

	count, err := testutil.GatherAndCount(m.Registry(), "datadash_sessions_expired_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_StartSessionJanitorStops(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartSessionJanitor(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
