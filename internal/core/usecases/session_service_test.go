package usecases_test

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/playback"
	"github.com/samirrijal/dronepath/internal/core/ports"
	"github.com/samirrijal/dronepath/internal/core/usecases"
	"github.com/samirrijal/dronepath/internal/pkg/geospatial"
)

func fastSessionConfig() usecases.SessionConfig {
	return usecases.SessionConfig{
		Playback:    playback.Config{Steps: 5, StepInterval: time.Millisecond},
		PauseAtEnd:  true,
		MaxSessions: 4,
	}
}

func newSessionService(t *testing.T, frames ports.FramePublisher, events ports.EventPublisher, lib *usecases.LibraryService) *usecases.SessionService {
	t.Helper()
	svc := usecases.NewSessionService(fastSessionConfig(), frames, events, lib)
	t.Cleanup(svc.Close)
	return svc
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSessionService_Lifecycle(t *testing.T) {
	events := &recordingEvents{}
	svc := newSessionService(t, nil, events, nil)
	ctx := context.Background()

	sess, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Points != 0 || !sess.State.IsPaused || sess.Status != domain.StatusPaused {
		t.Errorf("expected empty paused session, got %+v", sess)
	}

	got, err := svc.Get(sess.ID)
	if err != nil || got.ID != sess.ID {
		t.Fatalf("get: %v %+v", err, got)
	}
	if n := len(svc.List()); n != 1 {
		t.Errorf("expected 1 session, got %d", n)
	}

	if err := svc.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if svc.Exists(sess.ID) {
		t.Error("session still exists after delete")
	}
	if err := svc.Delete(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	want := []string{usecases.EventCreated, usecases.EventDeleted}
	if !slices.Equal(events.types(), want) {
		t.Errorf("expected events %v, got %v", want, events.types())
	}
}

func TestSessionService_MaxSessions(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	for i := 0; i < fastSessionConfig().MaxSessions; i++ {
		if _, err := svc.Create(context.Background()); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := svc.Create(context.Background()); !errors.Is(err, domain.ErrTooManySessions) {
		t.Errorf("expected ErrTooManySessions, got %v", err)
	}
}

func TestSessionService_UnknownSession(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	if _, err := svc.TogglePause(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Frame("nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_Upload_SinglePoint(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	sess, _ := svc.Create(context.Background())

	got, err := svc.Upload(context.Background(), sess.ID, "path.json",
		[]byte(`[{"latitude":1,"longitude":2,"timestamp":3}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Points != 1 || got.State.CurrentIndex != 0 {
		t.Errorf("expected 1 point at index 0, got %+v", got)
	}
}

func TestSessionService_Upload_MalformedLeavesPath(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	sess, _ := svc.Create(context.Background())
	if _, err := svc.Reset(context.Background(), sess.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}

	_, err := svc.Upload(context.Background(), sess.ID, "path.json",
		[]byte(`[{"latitude":"x","longitude":2,"timestamp":3}]`))
	if !errors.Is(err, domain.ErrMalformedUpload) {
		t.Fatalf("expected ErrMalformedUpload, got %v", err)
	}

	snap, _ := svc.Snapshot(sess.ID)
	if !slices.Equal(snap.Path, domain.DefaultPath()) {
		t.Errorf("path changed after rejected upload: %+v", snap.Path)
	}
}

func TestSessionService_Upload_GPX(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	sess, _ := svc.Create(context.Background())

	gpxDoc := `<?xml version="1.0"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="18.5204" lon="73.8567"></trkpt>
    <trkpt lat="18.5210" lon="73.8570"></trkpt>
  </trkseg></trk>
</gpx>`
	got, err := svc.Upload(context.Background(), sess.ID, "flight.gpx", []byte(gpxDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Points != 2 {
		t.Errorf("expected 2 points, got %d", got.Points)
	}
}

func TestSessionService_ResetAndToggle(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	ctx := context.Background()
	sess, _ := svc.Create(ctx)

	got, err := svc.Reset(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got.Points != 2 || !got.State.IsPaused || got.State.CurrentIndex != 0 {
		t.Errorf("unexpected reset state %+v", got)
	}

	if _, err := svc.TogglePause(ctx, sess.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, _ = svc.TogglePause(ctx, sess.ID)
	if !got.State.IsPaused || got.Points != 2 {
		t.Errorf("toggle twice should restore pause, got %+v", got)
	}
}

func TestSessionService_PlaysToEnd(t *testing.T) {
	frames := &recordingFrames{}
	svc := newSessionService(t, frames, nil, nil)
	ctx := context.Background()
	sess, _ := svc.Create(ctx)

	path := domain.Path{
		{Latitude: 1, Longitude: 1, Timestamp: 1},
		{Latitude: 2, Longitude: 2, Timestamp: 2},
		{Latitude: 3, Longitude: 3, Timestamp: 3},
	}
	if _, err := svc.SetPath(ctx, sess.ID, path); err != nil {
		t.Fatalf("set path: %v", err)
	}
	if _, err := svc.TogglePause(ctx, sess.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	waitFor(t, func() bool {
		s, _ := svc.Get(sess.ID)
		return s.State.CurrentIndex == 2 && s.State.IsPaused
	})

	waitFor(t, func() bool {
		f, _ := svc.Frame(sess.ID)
		return f.AtEnd && f.Position == path[2].Point()
	})
	if frames.count() == 0 {
		t.Error("expected frames to be published")
	}
}

func TestSessionService_SeekAndRemove(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	ctx := context.Background()
	sess, _ := svc.Create(ctx)
	_, _ = svc.Reset(ctx, sess.ID)

	if _, err := svc.Seek(ctx, sess.ID, 5); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	got, err := svc.Seek(ctx, sess.ID, 1)
	if err != nil || got.State.CurrentIndex != 1 {
		t.Fatalf("seek: %v %+v", err, got)
	}

	got, err = svc.RemovePoint(ctx, sess.ID, 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got.Points != 1 || got.State.CurrentIndex != 0 {
		t.Errorf("expected clamped index after remove, got %+v", got)
	}
}

func TestSessionService_AppendPoint_Invalid(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	sess, _ := svc.Create(context.Background())

	_, err := svc.AppendPoint(context.Background(), sess.ID, domain.Waypoint{Latitude: 1, Longitude: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := domain.Waypoint{Latitude: math.NaN(), Longitude: 2}
	if _, err := svc.AppendPoint(context.Background(), sess.ID, bad); !errors.Is(err, domain.ErrInvalidManualEntry) {
		t.Errorf("expected ErrInvalidManualEntry, got %v", err)
	}
}

func TestSessionService_Viewport_Empty(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	sess, _ := svc.Create(context.Background())

	vp, err := svc.Viewport(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vp.Center != domain.DefaultPosition || vp.Zoom != geospatial.ZoomLocal {
		t.Errorf("unexpected viewport %+v", vp)
	}
}

func TestSessionService_SaveWithoutLibrary(t *testing.T) {
	svc := newSessionService(t, nil, nil, nil)
	sess, _ := svc.Create(context.Background())

	if _, err := svc.Save(context.Background(), sess.ID, "p"); !errors.Is(err, domain.ErrLibraryUnavailable) {
		t.Errorf("expected ErrLibraryUnavailable, got %v", err)
	}
}

func TestSessionService_SaveAndLoad(t *testing.T) {
	saved := map[string]*domain.SavedPath{}
	repo := &mockPathRepo{
		createFn: func(ctx context.Context, p *domain.SavedPath) error {
			saved[p.ID] = p
			return nil
		},
		getByIDFn: func(ctx context.Context, id string) (*domain.SavedPath, error) {
			if p, ok := saved[id]; ok {
				return p, nil
			}
			return nil, domain.ErrPathNotFound
		},
	}
	events := &recordingEvents{}
	svc := newSessionService(t, nil, events, usecases.NewLibraryService(repo, nil))
	ctx := context.Background()

	a, _ := svc.Create(ctx)
	_, _ = svc.Reset(ctx, a.ID)
	sp, err := svc.Save(ctx, a.ID, "default")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	b, _ := svc.Create(ctx)
	got, err := svc.Load(ctx, b.ID, sp.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Points != 2 || got.State.CurrentIndex != 0 {
		t.Errorf("unexpected loaded session %+v", got)
	}
	if _, err := svc.Load(ctx, b.ID, "missing"); !errors.Is(err, domain.ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
	if !slices.Contains(events.types(), usecases.EventPathSet) {
		t.Errorf("expected path_set event, got %v", events.types())
	}
}
