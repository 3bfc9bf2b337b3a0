// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package curation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/cache"
	"github.com/tomtom215/moodmix/internal/generation"
	"github.com/tomtom215/moodmix/internal/models"
)

// memCatalog is an in-memory Catalog.
type memCatalog struct {
	mu        sync.Mutex
	tracks    map[string]*models.Track
	order     []string
	playlists []*models.Playlist

	listCalls  atomic.Int32
	topCalls   atomic.Int32
	failCreate error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{tracks: make(map[string]*models.Track)}
}

func (c *memCatalog) add(name string) models.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &models.Track{ID: uuid.New().String(), Name: name, StoragePath: "obj-" + name}
	c.tracks[t.ID] = t
	c.order = append(c.order, t.ID)
	return *t
}

func (c *memCatalog) usage(id string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tracks[id]; ok {
		return t.UsageCount
	}
	return -1
}

func (c *memCatalog) ListTracks(context.Context) ([]models.Track, error) {
	c.listCalls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Track, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		if t, ok := c.tracks[c.order[i]]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (c *memCatalog) GetTracksByIDs(_ context.Context, ids []string) (map[string]models.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]models.Track)
	for _, id := range ids {
		if t, ok := c.tracks[id]; ok {
			out[id] = *t
		}
	}
	return out, nil
}

func (c *memCatalog) CreatePlaylist(_ context.Context, p *models.Playlist) error {
	if c.failCreate != nil {
		return c.failCreate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p.ID = uuid.New().String()
	for _, e := range p.Entries {
		if t, ok := c.tracks[e.TrackID]; ok {
			t.UsageCount++
		}
	}
	c.playlists = append(c.playlists, p)
	return nil
}

func (c *memCatalog) DeleteTrack(_ context.Context, id string) (*models.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tracks[id]
	if !ok {
		return nil, errNotFound
	}
	delete(c.tracks, id)
	return t, nil
}

func (c *memCatalog) TopTracks(_ context.Context, limit int) ([]models.TopTrack, error) {
	c.topCalls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	top := make([]models.TopTrack, 0)
	for _, t := range c.tracks {
		if t.UsageCount > 0 {
			top = append(top, models.TopTrack{ID: t.ID, Name: t.Name, UsageCount: t.UsageCount})
		}
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].UsageCount != top[j].UsageCount {
			return top[i].UsageCount > top[j].UsageCount
		}
		return top[i].ID < top[j].ID
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

var errNotFound = errors.New("not found")

// scriptedGenerator returns reply (or err) and records prompts.
type scriptedGenerator struct {
	mu      sync.Mutex
	reply   func(prompt string) string
	err     error
	prompts []string
	before  func()
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	before := g.before
	g.mu.Unlock()
	if before != nil {
		before()
	}
	if g.err != nil {
		return "", g.err
	}
	return g.reply(prompt), nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func replyWith(selections ...string) func(string) string {
	return func(string) string {
		return `{"tracks":[` + strings.Join(selections, ",") + `]}`
	}
}

func sel(id string, weight float64) string {
	return fmt.Sprintf(`{"id":%q,"weight":%v}`, id, weight)
}

type fixture struct {
	catalog *memCatalog
	gen     *scriptedGenerator
	store   *cache.MemoryStore
	blobs   *blobstore.FilesystemStore
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs, err := blobstore.NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore() error = %v", err)
	}
	f := &fixture{
		catalog: newMemCatalog(),
		gen:     &scriptedGenerator{},
		store:   cache.NewMemoryStore(),
		blobs:   blobs,
	}
	f.svc = NewService(f.catalog, f.gen, cache.NewTopTracksCache(f.store, 0), blobs)
	return f
}

func TestGeneratePlaylist_SingleTrackScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := f.catalog.add("A.mp3")
	f.gen.reply = replyWith(sel(a.ID, 0.9))

	p, err := f.svc.GeneratePlaylist(context.Background(), "calm")
	if err != nil {
		t.Fatalf("GeneratePlaylist() error = %v", err)
	}
	if len(p.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(p.Entries))
	}
	e := p.Entries[0]
	if e.Position != 1 || e.Weight != 0.9 || e.TrackID != a.ID {
		t.Errorf("entry = %+v", e)
	}
	if e.Track == nil || e.Track.UsageCount != 1 {
		t.Errorf("resolved track = %+v, want usage 1", e.Track)
	}
	if got := f.catalog.usage(a.ID); got != 1 {
		t.Errorf("usage(A) = %d, want 1", got)
	}
	if !strings.Contains(f.gen.prompts[0], "- id: "+a.ID+" | name: A.mp3") {
		t.Errorf("prompt does not list the catalog:\n%s", f.gen.prompts[0])
	}
}

func TestGeneratePlaylist_DropsUnknownScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	var tracks []models.Track
	for i := 0; i < 5; i++ {
		tracks = append(tracks, f.catalog.add(fmt.Sprintf("t%d.mp3", i)))
	}
	f.gen.reply = replyWith(
		sel("ghost-1", 0.7),
		sel(tracks[3].ID, 0.6),
		sel("ghost-2", 0.5),
		sel(tracks[1].ID, 0.4),
		sel("ghost-3", 0.3),
	)

	p, err := f.svc.GeneratePlaylist(context.Background(), "energetic")
	if err != nil {
		t.Fatalf("GeneratePlaylist() error = %v", err)
	}
	if len(p.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(p.Entries))
	}
	if p.Entries[0].TrackID != tracks[3].ID || p.Entries[0].Position != 1 {
		t.Errorf("Entries[0] = %+v", p.Entries[0])
	}
	if p.Entries[1].TrackID != tracks[1].ID || p.Entries[1].Position != 2 {
		t.Errorf("Entries[1] = %+v", p.Entries[1])
	}
}

func TestGeneratePlaylist_RepeatedSelectionCountsTwice(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a, b, c := f.catalog.add("a.mp3"), f.catalog.add("b.mp3"), f.catalog.add("c.mp3")
	f.gen.reply = replyWith(sel(a.ID, 0.9), sel(b.ID, 0.8), sel(a.ID, 0.7), sel(c.ID, 0.6))

	p, err := f.svc.GeneratePlaylist(context.Background(), "drizzle")
	if err != nil {
		t.Fatalf("GeneratePlaylist() error = %v", err)
	}
	if len(p.Entries) != 4 {
		t.Fatalf("len(Entries) = %d, want 4", len(p.Entries))
	}
	if p.Entries[2].TrackID != a.ID || p.Entries[2].Position != 3 || p.Entries[2].Weight != 0.7 {
		t.Errorf("Entries[2] = %+v", p.Entries[2])
	}
	if got := f.catalog.usage(a.ID); got != 2 {
		t.Errorf("usage(a) = %d, want 2", got)
	}
	if got := f.catalog.usage(b.ID); got != 1 {
		t.Errorf("usage(b) = %d, want 1", got)
	}
	for _, i := range []int{0, 2} {
		if got := p.Entries[i].Track.UsageCount; got != 2 {
			t.Errorf("Entries[%d].Track.UsageCount = %d, want 2", i, got)
		}
	}
}

func TestGeneratePlaylist_WeightsDefaulted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a, b, c := f.catalog.add("a"), f.catalog.add("b"), f.catalog.add("c")
	f.gen.reply = replyWith(
		fmt.Sprintf(`{"id":%q}`, a.ID),
		fmt.Sprintf(`{"id":%q,"weight":"loud"}`, b.ID),
		sel(c.ID, 0.25),
	)

	p, err := f.svc.GeneratePlaylist(context.Background(), "mixed")
	if err != nil {
		t.Fatalf("GeneratePlaylist() error = %v", err)
	}
	want := []float64{0.5, 0.5, 0.25}
	for i, w := range want {
		if p.Entries[i].Weight != w {
			t.Errorf("Entries[%d].Weight = %v, want %v", i, p.Entries[i].Weight, w)
		}
	}
}

func TestGeneratePlaylist_RefusedWithoutBackendCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mood     string
		withData bool
		wantErr  error
	}{
		{"empty mood", "", true, generation.ErrEmptyMood},
		{"whitespace mood", "   ", true, generation.ErrEmptyMood},
		{"empty catalog", "calm", false, generation.ErrEmptyCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.withData {
				f.catalog.add("a")
			}
			f.gen.reply = replyWith()

			_, err := f.svc.GeneratePlaylist(context.Background(), tt.mood)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GeneratePlaylist() error = %v, want %v", err, tt.wantErr)
			}
			if f.gen.calls() != 0 {
				t.Error("backend must not be called")
			}
			if len(f.catalog.playlists) != 0 {
				t.Error("nothing may be persisted")
			}
		})
	}
}

func TestGeneratePlaylist_FailuresPersistNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   string
		genErr  error
		wantErr error
	}{
		{"backend unavailable", "", fmt.Errorf("%w: quota", generation.ErrGenerationUnavailable), generation.ErrGenerationUnavailable},
		{"malformed output", "I think you'd enjoy jazz.", nil, generation.ErrInvalidGenerationResponse},
		{"all unknown ids", `{"tracks":[{"id":"nope","weight":1}]}`, nil, ErrEmptyPlaylist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.catalog.add("a")
			reply := tt.reply
			f.gen.reply = func(string) string { return reply }
			f.gen.err = tt.genErr

			_, err := f.svc.GeneratePlaylist(context.Background(), "calm")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GeneratePlaylist() error = %v, want %v", err, tt.wantErr)
			}
			if len(f.catalog.playlists) != 0 {
				t.Error("no playlist may be persisted")
			}
			if f.catalog.usage(a.ID) != 0 {
				t.Error("usage counter must not change")
			}
		})
	}
}

func TestGeneratePlaylist_PersistFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := f.catalog.add("a")
	f.gen.reply = replyWith(sel(a.ID, 1))
	f.catalog.failCreate = errors.New("disk full")

	// Pre-populate the cache; a failed generation must not invalidate it.
	f.svc.topTracks.Populate(context.Background(), &cache.TopTracksSnapshot{Limit: 10})

	if _, err := f.svc.GeneratePlaylist(context.Background(), "calm"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := f.svc.topTracks.Read(context.Background()); !ok {
		t.Error("cache should not be invalidated by a failed generation")
	}
}

func TestGeneratePlaylist_TrackDeletedDuringGeneration(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a, b := f.catalog.add("a"), f.catalog.add("b")
	f.gen.reply = replyWith(sel(a.ID, 0.8), sel(b.ID, 0.6))
	f.gen.before = func() {
		_, _ = f.catalog.DeleteTrack(context.Background(), a.ID)
	}

	p, err := f.svc.GeneratePlaylist(context.Background(), "calm")
	if err != nil {
		t.Fatalf("GeneratePlaylist() error = %v", err)
	}
	if len(p.Entries) != 1 || p.Entries[0].TrackID != b.ID {
		t.Errorf("Entries = %+v, want only b", p.Entries)
	}
}

func TestGeneratePlaylist_CounterLaw(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a, b := f.catalog.add("a"), f.catalog.add("b")
	f.gen.reply = replyWith(sel(a.ID, 0.5), sel(b.ID, 0.5))

	const k = 10
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.GeneratePlaylist(context.Background(), "party"); err != nil {
				t.Errorf("GeneratePlaylist() error = %v", err)
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{a.ID, b.ID} {
		if got := f.catalog.usage(id); got != k {
			t.Errorf("usage = %d, want %d", got, k)
		}
	}
}

func TestTopTracks_CacheLaw(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.catalog.add("a"), f.catalog.add("b")

	f.gen.reply = replyWith(sel(a.ID, 1))
	if _, err := f.svc.GeneratePlaylist(ctx, "one"); err != nil {
		t.Fatalf("GeneratePlaylist() error = %v", err)
	}

	top, cached, err := f.svc.TopTracks(ctx, 0)
	if err != nil {
		t.Fatalf("TopTracks() error = %v", err)
	}
	if cached || len(top) != 1 || top[0].ID != a.ID {
		t.Fatalf("TopTracks() = %+v cached=%v", top, cached)
	}

	if _, cached, _ := f.svc.TopTracks(ctx, 5); !cached {
		t.Error("second read within TTL should be served from cache")
	}

	// Generation invalidates: b must show up immediately.
	f.gen.reply = replyWith(sel(b.ID, 1))
	for i := 0; i < 2; i++ {
		if _, err := f.svc.GeneratePlaylist(ctx, "two"); err != nil {
			t.Fatalf("GeneratePlaylist() error = %v", err)
		}
	}
	top, cached, _ = f.svc.TopTracks(ctx, 10)
	if cached {
		t.Error("read after generation should recompute")
	}
	if len(top) != 2 || top[0].ID != b.ID || top[0].UsageCount != 2 {
		t.Errorf("TopTracks() = %+v", top)
	}

	// Deletion invalidates too.
	if err := f.svc.DeleteTrack(ctx, b.ID); err != nil {
		t.Fatalf("DeleteTrack() error = %v", err)
	}
	top, cached, _ = f.svc.TopTracks(ctx, 10)
	if cached || len(top) != 1 || top[0].ID != a.ID {
		t.Errorf("TopTracks() after delete = %+v cached=%v", top, cached)
	}
}

func TestTopTracks_LargerLimitRecomputes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	var sels []string
	for i := 0; i < 12; i++ {
		tr := f.catalog.add(fmt.Sprintf("t%02d", i))
		sels = append(sels, sel(tr.ID, 0.5))
	}
	f.gen.reply = replyWith(sels...)
	if _, err := f.svc.GeneratePlaylist(ctx, "everything"); err != nil {
		t.Fatalf("GeneratePlaylist() error = %v", err)
	}

	top, _, _ := f.svc.TopTracks(ctx, 10)
	if len(top) != 10 {
		t.Fatalf("TopTracks(10) len = %d", len(top))
	}
	top, cached, _ := f.svc.TopTracks(ctx, 20)
	if cached {
		t.Error("a snapshot of 10 cannot answer a request for 20")
	}
	if len(top) != 12 {
		t.Errorf("TopTracks(20) len = %d, want 12", len(top))
	}
	if calls := f.catalog.topCalls.Load(); calls != 2 {
		t.Errorf("TopTracks computed %d times, want 2", calls)
	}
}

func TestTopTracks_InvalidLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, limit := range []int{-1, MaxTopTracksLimit + 1} {
		if _, _, err := f.svc.TopTracks(context.Background(), limit); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("TopTracks(%d) error = %v, want ErrInvalidLimit", limit, err)
		}
	}
}

func TestTopTracks_CacheDownStillServes(t *testing.T) {
	t.Parallel()
	catalog := newMemCatalog()
	a := catalog.add("a")
	_ = catalog.CreatePlaylist(context.Background(), &models.Playlist{Entries: []models.PlaylistEntry{{TrackID: a.ID}}})

	blobs, _ := blobstore.NewFilesystemStore(t.TempDir())
	svc := NewService(catalog, &scriptedGenerator{}, cache.NewTopTracksCache(downStore{}, 0), blobs)

	for i := 0; i < 2; i++ {
		top, cached, err := svc.TopTracks(context.Background(), 10)
		if err != nil || cached || len(top) != 1 {
			t.Errorf("TopTracks() = %+v cached=%v err=%v", top, cached, err)
		}
	}
}

func TestDeleteTrack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a := f.catalog.add("a")
	if _, err := f.blobs.Put(ctx, a.StoragePath, strings.NewReader("bytes")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := f.svc.DeleteTrack(ctx, a.ID); err != nil {
		t.Fatalf("DeleteTrack() error = %v", err)
	}
	if _, err := f.blobs.Open(ctx, a.StoragePath); !errors.Is(err, blobstore.ErrObjectNotFound) {
		t.Errorf("object still present: %v", err)
	}

	// Missing object is tolerated.
	b := f.catalog.add("b")
	if err := f.svc.DeleteTrack(ctx, b.ID); err != nil {
		t.Errorf("DeleteTrack() without object error = %v", err)
	}

	if err := f.svc.DeleteTrack(ctx, "nope"); !errors.Is(err, errNotFound) {
		t.Errorf("DeleteTrack(unknown) error = %v", err)
	}
}

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, DefaultTopTracksLimit, false},
		{1, 1, false},
		{MaxTopTracksLimit, MaxTopTracksLimit, false},
		{-5, 0, true},
		{MaxTopTracksLimit + 1, 0, true},
	}
	for _, tt := range tests {
		got, err := NormalizeLimit(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("NormalizeLimit(%d) = %d, %v", tt.in, got, err)
		}
	}
}

func TestGenerationOutcome(t *testing.T) {
	t.Parallel()
	tests := map[string]error{
		"success":                nil,
		"validation_error":       generation.ErrEmptyMood,
		"generation_unavailable": generation.ErrGenerationUnavailable,
		"invalid_response":       generation.ErrInvalidGenerationResponse,
		"empty_playlist":         ErrEmptyPlaylist,
		"error":                  errors.New("boom"),
	}
	for want, err := range tests {
		if got := generationOutcome(err); got != want {
			t.Errorf("generationOutcome(%v) = %q, want %q", err, got, want)
		}
	}
}

type downStore struct{}

var errDown = errors.New("cache unreachable")

func (downStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (downStore) Set(context.Context, string, []byte, time.Duration) error { return errDown }
func (downStore) Delete(context.Context, string) error { return errDown }
func (downStore) Ping(context.Context) error { return errDown }
