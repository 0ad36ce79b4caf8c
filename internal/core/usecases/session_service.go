package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/playback"
	"github.com/samirrijal/dronepath/internal/core/ports"
	"github.com/samirrijal/dronepath/internal/pathfile"
	"github.com/samirrijal/dronepath/internal/pkg/geospatial"
	"github.com/samirrijal/dronepath/internal/pkg/metrics"
	"github.com/samirrijal/dronepath/internal/pkg/telemetry"
)

// Session lifecycle event types.
const (
	EventCreated = "created"
	EventDeleted = "deleted"
	EventPathSet = "path_set"
	EventReset   = "reset"
)

// SessionConfig controls how sessions are built.
type SessionConfig struct {
	Playback    playback.Config
	PauseAtEnd  bool
	MaxSessions int
}

// DefaultSessionConfig mirrors the config package defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Playback:    playback.DefaultConfig(),
		PauseAtEnd:  true,
		MaxSessions: 64,
	}
}

// SessionService owns the playback sessions. Each session is one path store
// with its engine running in its own goroutine.
type SessionService struct {
	cfg     SessionConfig
	frames  ports.FramePublisher
	events  ports.EventPublisher
	library *LibraryService

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id      string
	created time.Time
	store   *playback.Store
	engine  *playback.Engine
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSessionService creates a new SessionService. frames, events and library
// may be nil.
func NewSessionService(cfg SessionConfig, frames ports.FramePublisher, events ports.EventPublisher, library *LibraryService) *SessionService {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultSessionConfig().MaxSessions
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionService{
		cfg:      cfg,
		frames:   frames,
		events:   events,
		library:  library,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
}

// Create starts a new session with an empty, paused path.
func (s *SessionService) Create(ctx context.Context) (*domain.Session, error) {
	_, span := telemetry.Tracer().Start(ctx, "SessionService.Create")
	defer span.End()

	s.mu.Lock()
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: limit is %d", domain.ErrTooManySessions, s.cfg.MaxSessions)
	}

	id := uuid.NewString()
	store := playback.NewStore(playback.WithPauseAtEnd(s.cfg.PauseAtEnd))
	engine := playback.NewEngine(id, store, s.cfg.Playback, meteredPublisher{next: s.frames})
	runCtx, cancel := context.WithCancel(s.ctx)
	sess := &session{
		id:      id,
		created: time.Now().UTC(),
		store:   store,
		engine:  engine,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	go func() {
		defer close(sess.done)
		if err := engine.Run(runCtx); err != nil {
			slog.Error("playback engine exited", "session", id, "error", err)
		}
	}()

	metrics.SessionsActive.Set(float64(count))
	span.SetAttributes(attribute.String(telemetry.AttrSessionID, id))
	slog.Info("session created", "session", id)
	s.publishEvent(ctx, sess, EventCreated)

	return sess.summary(), nil
}

// Get returns the session summary.
func (s *SessionService) Get(id string) (*domain.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sess.summary(), nil
}

// Exists reports whether the session is live.
func (s *SessionService) Exists(id string) bool {
	_, err := s.lookup(id)
	return err == nil
}

// List returns all sessions, oldest first.
func (s *SessionService) List() []domain.Session {
	s.mu.RLock()
	out := make([]domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess.summary())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete stops the session engine, cancelling any in-flight animation, and
// forgets the session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	_, span := telemetry.Tracer().Start(ctx, "SessionService.Delete",
		trace.WithAttributes(attribute.String(telemetry.AttrSessionID, id)))
	defer span.End()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.cancel()
	<-sess.done

	metrics.SessionsActive.Set(float64(count))
	slog.Info("session deleted", "session", id)
	s.publishEvent(ctx, sess, EventDeleted)
	return nil
}

// Close stops every engine and waits for them to exit.
func (s *SessionService) Close() {
	s.cancel()

	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		<-sess.done
	}
	metrics.SessionsActive.Set(0)
}

// SetPath replaces the session path and rewinds playback.
func (s *SessionService) SetPath(ctx context.Context, id string, path domain.Path) (*domain.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.store.SetPath(path)
	metrics.PathMutations.WithLabelValues("set_path").Inc()
	s.publishEvent(ctx, sess, EventPathSet)
	return sess.summary(), nil
}

// Upload parses an uploaded path file and installs it. A file that fails to
// parse leaves the session untouched.
func (s *SessionService) Upload(ctx context.Context, id, filename string, data []byte) (*domain.Session, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "SessionService.Upload",
		trace.WithAttributes(attribute.String(telemetry.AttrSessionID, id)))
	defer span.End()

	if _, err := s.lookup(id); err != nil {
		return nil, err
	}

	format, err := pathfile.DetectFormat(filename, data)
	if err != nil {
		metrics.UploadsRejected.WithLabelValues("format").Inc()
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.AttrFormat, string(format)))

	path, err := pathfile.Parse(format, data)
	if err != nil {
		metrics.UploadsRejected.WithLabelValues("malformed").Inc()
		slog.Warn("upload rejected", "session", id, "file", filename, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(telemetry.AttrPointCount, len(path)))

	return s.SetPath(ctx, id, path)
}

// AppendPoint adds a manually entered waypoint at the end of the path.
func (s *SessionService) AppendPoint(ctx context.Context, id string, w domain.Waypoint) (*domain.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := sess.store.AppendPoint(w); err != nil {
		metrics.UploadsRejected.WithLabelValues("manual").Inc()
		return nil, err
	}
	metrics.PathMutations.WithLabelValues("append").Inc()
	return sess.summary(), nil
}

// RemovePoint deletes the waypoint at index.
func (s *SessionService) RemovePoint(ctx context.Context, id string, index int) (*domain.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := sess.store.RemovePoint(index); err != nil {
		return nil, err
	}
	metrics.PathMutations.WithLabelValues("remove").Inc()
	return sess.summary(), nil
}

// TogglePause flips the pause flag.
func (s *SessionService) TogglePause(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	paused := sess.store.TogglePause()
	metrics.PathMutations.WithLabelValues("toggle").Inc()
	slog.Debug("pause toggled", "session", id, "paused", paused)
	return sess.summary(), nil
}

// Reset installs the default path, paused at the first waypoint.
func (s *SessionService) Reset(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.store.Reset()
	metrics.PathMutations.WithLabelValues("reset").Inc()
	s.publishEvent(ctx, sess, EventReset)
	return sess.summary(), nil
}

// Seek moves the cursor to index.
func (s *SessionService) Seek(ctx context.Context, id string, index int) (*domain.Session, error) {
	_, span := telemetry.Tracer().Start(ctx, "SessionService.Seek",
		trace.WithAttributes(
			attribute.String(telemetry.AttrSessionID, id),
			attribute.Int(telemetry.AttrIndex, index),
		))
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := sess.store.Seek(index); err != nil {
		return nil, err
	}
	metrics.PathMutations.WithLabelValues("seek").Inc()
	return sess.summary(), nil
}

// Frame returns the latest rendered frame.
func (s *SessionService) Frame(id string) (domain.Frame, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.Frame{}, err
	}
	return sess.engine.Frame(), nil
}

// Snapshot returns the path and playback state.
func (s *SessionService) Snapshot(id string) (domain.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return sess.store.Snapshot(), nil
}

// Viewport suggests the map view fitting the session path.
func (s *SessionService) Viewport(id string) (domain.Viewport, error) {
	snap, err := s.Snapshot(id)
	if err != nil {
		return domain.Viewport{}, err
	}
	return geospatial.Viewport(snap.Path), nil
}

// GeoJSON exports the session path.
func (s *SessionService) GeoJSON(id string) (*geojson.FeatureCollection, error) {
	snap, err := s.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return pathfile.ToGeoJSON(snap.Path), nil
}

// Save stores the current session path in the library.
func (s *SessionService) Save(ctx context.Context, id, name string) (*domain.SavedPath, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "SessionService.Save",
		trace.WithAttributes(attribute.String(telemetry.AttrSessionID, id)))
	defer span.End()

	snap, err := s.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return s.library.Save(ctx, name, snap.Path)
}

// Load replaces the session path with a saved one.
func (s *SessionService) Load(ctx context.Context, id, pathID string) (*domain.Session, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "SessionService.Load",
		trace.WithAttributes(
			attribute.String(telemetry.AttrSessionID, id),
			attribute.String(telemetry.AttrPathID, pathID),
		))
	defer span.End()

	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	sp, err := s.library.GetByID(ctx, pathID)
	if err != nil {
		return nil, err
	}
	return s.SetPath(ctx, id, sp.Waypoints)
}

func (s *SessionService) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionService) publishEvent(ctx context.Context, sess *session, typ string) {
	if s.events == nil {
		return
	}
	ev := &domain.SessionEvent{
		SessionID: sess.id,
		Type:      typ,
		Points:    len(sess.store.Snapshot().Path),
		Time:      time.Now().UTC(),
	}
	if err := s.events.PublishSessionEvent(ctx, ev); err != nil {
		slog.Warn("publish session event failed", "session", sess.id, "type", typ, "error", err)
	}
}

func (sess *session) summary() *domain.Session {
	snap := sess.store.Snapshot()
	return &domain.Session{
		ID:        sess.id,
		CreatedAt: sess.created,
		Points:    len(snap.Path),
		State:     snap.State,
		Status:    snap.Status(),
	}
}

// meteredPublisher counts frames before handing them on.
type meteredPublisher struct {
	next ports.FramePublisher
}

func (m meteredPublisher) PublishFrame(ctx context.Context, f *domain.Frame) error {
	metrics.FramesEmitted.WithLabelValues(string(f.Status)).Inc()
	if f.Status == domain.StatusRunning && f.Step == f.Steps {
		metrics.WaypointsReached.Inc()
	}
	if m.next == nil {
		return nil
	}
	return m.next.PublishFrame(ctx, f)
}
