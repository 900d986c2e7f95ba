package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/datadash/internal/config"
	"github.com/JonMunkholm/datadash/internal/logging"
	"github.com/JonMunkholm/datadash/internal/metrics"
)

// Service provides the dashboard's business logic: sessions, ingestion,
// coercion, statistics and chart preparation.
type Service struct {
	encodings     []Encoding
	previewRows   int
	maxFileSize   int64
	sweepInterval time.Duration

	sessions *SessionStore
	limiter  *AnalysisLimiter
	metrics  *metrics.Metrics
}

// NewService creates a Service from configuration. m may be nil.
func NewService(cfg *config.Config, m *metrics.Metrics) (*Service, error) {
	encodings, err := ParseEncodings(cfg.Ingest.Encodings)
	if err != nil {
		return nil, fmt.Errorf("ingest encodings: %w", err)
	}

	return &Service{
		encodings:     encodings,
		previewRows:   cfg.Ingest.PreviewRows,
		maxFileSize:   cfg.Upload.MaxFileSize,
		sweepInterval: cfg.Session.SweepInterval,
		sessions:      NewSessionStore(cfg.Session.TTL, cfg.Session.MaxSessions),
		limiter:       NewAnalysisLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		metrics:       m,
	}, nil
}

// Encodings returns the candidate encoding names in order.
func (s *Service) Encodings() []string {
	names := make([]string, len(s.encodings))
	for i, e := range s.encodings {
		names[i] = e.Name
	}
	return names
}

// Limiter exposes the analysis limiter for health reporting and shutdown.
func (s *Service) Limiter() *AnalysisLimiter {
	return s.limiter
}

// CreateSession reads an upload and stores it in a new session. Only the
// format and size are checked here; parsing happens when the session is viewed
// so that every encoding attempt can be reported on the page.
func (s *Service) CreateSession(ctx context.Context, filename string, r io.Reader) (Session, error) {
	logger := logging.WithFields(ctx, "filename", filename)

	format, err := FormatFromFilename(filename)
	if err != nil {
		s.metrics.Upload("unknown", 0, false)
		return Session{}, err
	}

	cr := NewCountingReader(r, s.maxFileSize)
	data, err := io.ReadAll(cr)
	if err != nil {
		s.metrics.Upload(string(format), cr.BytesRead, false)
		return Session{}, fmt.Errorf("read upload: %w", err)
	}

	sess := s.sessions.Create(filename, format, data)
	s.metrics.Upload(string(format), int64(len(data)), true)
	s.metrics.Sessions(s.sessions.Len())

	logger.Info("session created",
		"session_id", sess.ID,
		"format", format,
		"bytes", len(data),
		"client_ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)
	return sess, nil
}

// Session returns a snapshot of a session.
func (s *Service) Session(id string) (Session, error) {
	return s.sessions.Get(id)
}

// SetDirectives stores column type directives for a session.
func (s *Service) SetDirectives(ctx context.Context, id string, directives map[string]TypeDirective) error {
	if err := s.sessions.SetDirectives(id, directives); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("directives updated", "count", len(directives))
	return nil
}

// SessionCount returns the number of stored sessions.
func (s *Service) SessionCount() int {
	return s.sessions.Len()
}

// DeleteSession discards a session and its data.
func (s *Service) DeleteSession(id string) {
	s.sessions.Delete(id)
	s.metrics.Sessions(s.sessions.Len())
}

// Workspace is a session's table after ingestion and coercion.
type Workspace struct {
	Session Session
	Load    *LoadResult
	// LoadErr is set when the file could not be read; Table is then nil.
	LoadErr   error
	Original  *Table
	Table     *Table
	Coercions []CoercionResult
}

// workspace ingests the session's bytes and applies its directives.
func (s *Service) workspace(ctx context.Context, id string) (*Workspace, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	ctx = logging.ContextWithSessionID(ctx, sess.ID)
	logger := logging.FromContext(ctx)

	res, err := Load(sess.Data, string(sess.Format), s.encodings)
	for _, a := range res.Attempts {
		s.metrics.IngestAttempt(a.Encoding, a.Level())
		logger.Debug("encoding attempt", "encoding", a.Encoding, "result", a.Level())
	}
	ws := &Workspace{Session: sess, Load: res}
	if err != nil {
		logger.Info("file could not be loaded", "error", err)
		ws.LoadErr = err
		return ws, nil
	}

	ws.Original = res.Table
	ws.Table, ws.Coercions = ApplyDirectives(res.Table, sess.Directives)
	for _, c := range ws.Coercions {
		s.metrics.Coercion(string(c.Target), c.OK())
		if !c.OK() {
			logger.Warn("column conversion failed", "column", c.Column, "target", c.Target, "error", c.Err)
		}
	}
	return ws, nil
}

// Analysis is everything the dashboard page shows for one session.
type Analysis struct {
	*Workspace

	Preview [][]string
	Info    []ColumnInfo

	Stats *Description
	// StatsErr is an *InfoError when there is nothing to describe.
	StatsErr error

	// Chart is the resolved chart request; ChartErr explains why it cannot
	// be drawn.
	Chart    ChartRequest
	ChartErr error
}

// Analyze loads a session and computes the page content for req.
// Load failures are reported inside the Analysis, not as an error.
func (s *Service) Analyze(ctx context.Context, id string, req ChartRequest) (*Analysis, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ws, err := s.workspace(ctx, id)
	if err != nil {
		return nil, err
	}
	a := &Analysis{Workspace: ws, Chart: req}
	if ws.LoadErr != nil {
		return a, nil
	}

	a.Preview = ws.Original.Head(s.previewRows)
	a.Info = ws.Original.Info()
	a.Stats, a.StatsErr = Describe(ws.Table)

	data, err := PrepareChart(ws.Table, req)
	switch {
	case err == nil:
		a.Chart = data.Request
	case isInfoError(err):
		a.ChartErr = err
		if resolved, rerr := ResolveChartRequest(ws.Table, req); rerr == nil {
			a.Chart = resolved
		}
	default:
		return nil, err
	}
	return a, nil
}

// Chart prepares chart data for a session.
func (s *Service) Chart(ctx context.Context, id string, req ChartRequest) (*ChartData, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ws, err := s.workspace(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws.LoadErr != nil {
		return nil, ws.LoadErr
	}
	return PrepareChart(ws.Table, req)
}

// Describe computes summary statistics for a session.
func (s *Service) Describe(ctx context.Context, id string) (*Description, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ws, err := s.workspace(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws.LoadErr != nil {
		return nil, ws.LoadErr
	}
	return Describe(ws.Table)
}

func isInfoError(err error) bool {
	_, ok := AsInfo(err)
	return ok
}
