package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cratebin/cratebin/internal/pkg/clock"
	"github.com/cratebin/cratebin/internal/pkg/config"
	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/goroutine"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/pkg/storage"
	"github.com/cratebin/cratebin/internal/pkg/validator"
	"github.com/cratebin/cratebin/internal/registry/entity"
)

type fakeRepo struct {
	mu        sync.Mutex
	published []entity.PublishData
	pubErr    error

	crates   map[string]*entity.Crate
	versions map[string]*entity.Version
	keywords map[string]*entity.Keyword
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		crates:   make(map[string]*entity.Crate),
		versions: make(map[string]*entity.Version),
		keywords: make(map[string]*entity.Keyword),
	}
}

func (f *fakeRepo) PublishVersion(_ context.Context, in entity.PublishData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, in)
	return nil
}

func (f *fakeRepo) GetCrateByName(_ context.Context, name string) (*entity.Crate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.crates[name]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) GetVersionsByCrateID(_ context.Context, crateID int64) ([]entity.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Version, 0)
	for _, v := range f.versions {
		if v.CrateID == crateID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetKeywordsByCrateID(_ context.Context, _ int64) ([]entity.Keyword, error) {
	return nil, nil
}

func (f *fakeRepo) GetVersion(_ context.Context, name, num string) (*entity.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.versions[name+"/"+num]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeRepo) GetKeywordList(_ context.Context, _, _ int32) ([]entity.Keyword, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Keyword, 0, len(f.keywords))
	for _, k := range f.keywords {
		out = append(out, *k)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) GetKeywordByName(_ context.Context, name string) (*entity.Keyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keywords[name]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return storage.ObjectInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	f.objects[bucket+"/"+key] = data
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStorage) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ObjectInfo{}, goerror.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStorage) StatObject(_ context.Context, bucket, key string) (storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return storage.ObjectInfo{}, goerror.ErrNotFound
	}
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + key, nil
}

func (f *fakeStorage) Close() error { return nil }

type fakeMessaging struct {
	mu     sync.Mutex
	events []CratePublishedEvent
	done   chan struct{}
}

func newFakeMessaging() *fakeMessaging {
	return &fakeMessaging{done: make(chan struct{}, 8)}
}

func (f *fakeMessaging) PublishCratePublished(_ context.Context, msg CratePublishedEvent) error {
	f.mu.Lock()
	f.events = append(f.events, msg)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[int64]int64
	done   chan struct{}
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[int64]int64), done: make(chan struct{}, 8)}
}

func (f *fakeCounter) Increment(_ context.Context, versionID int64) error {
	f.mu.Lock()
	f.counts[versionID]++
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeCounter) Drain(_ context.Context) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.counts
	f.counts = make(map[int64]int64)
	return out, nil
}

func (f *fakeCounter) Restore(_ context.Context, totals map[int64]int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, n := range totals {
		f.counts[id] += n
	}
	return nil
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type testEnv struct {
	uc        *Usecase
	repo      *fakeRepo
	storage   *fakeStorage
	messaging *fakeMessaging
	counter   *fakeCounter
}

func newTestEnv(t *testing.T, configYAML string) *testEnv {
	t.Helper()

	if configYAML == "" {
		configYAML = "storage:\n  bucket: crates-test\n"
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(configYAML))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	env := &testEnv{
		repo:      newFakeRepo(),
		storage:   newFakeStorage(),
		messaging: newFakeMessaging(),
		counter:   newFakeCounter(),
	}
	env.uc = New(Dependency{
		RepoDB:        env.repo,
		RepoMessaging: env.messaging,
		Storage:       env.storage,
		Counter:       env.counter,
		Validator:     v,
		Config:        cfg,
		UID:           &seqID{},
		Clock:         clock.Static{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Instrument:    instrument.NewNoop(),
		Goroutine:     goroutine.NewManager(4),
	})
	return env
}

func authedCtx() context.Context {
	return router.SetAuth(context.Background(), router.AuthUser{TokenID: 1, UserID: 42, TokenName: "ci"})
}

func TestPublish(t *testing.T) {
	env := newTestEnv(t, "")
	archive := []byte("compressed crate bytes")

	out, err := env.uc.Publish(authedCtx(), PublishInput{
		Name:        "serde",
		Version:     "1.0.0",
		Description: "serialization framework",
		Keywords:    []string{"Serialization", "serialization", "no-std"},
		Archive:     bytes.NewReader(archive),
		ArchiveSize: int64(len(archive)),
	})
	require.NoError(t, err)

	wantSum := sha256.Sum256(archive)
	assert.Equal(t, hex.EncodeToString(wantSum[:]), out.Checksum)
	assert.Equal(t, "1.0.0", out.Version.Num)

	require.Len(t, env.repo.published, 1)
	data := env.repo.published[0]
	assert.Equal(t, []string{"serialization", "no-std"}, data.Keywords)
	assert.Len(t, data.KeywordIDs, 2)

	stored, ok := env.storage.objects["crates-test/crates/serde/serde-1.0.0.crate"]
	require.True(t, ok)
	assert.Equal(t, archive, stored)

	select {
	case <-env.messaging.done:
	case <-time.After(2 * time.Second):
		t.Fatal("published event was never announced")
	}

	env.messaging.mu.Lock()
	defer env.messaging.mu.Unlock()
	require.Len(t, env.messaging.events, 1)
	assert.Equal(t, "serde", env.messaging.events[0].Name)
	assert.Equal(t, int64(42), env.messaging.events[0].Publisher)
}

func TestPublishStoresReadme(t *testing.T) {
	env := newTestEnv(t, "")
	archive := []byte("bytes")

	_, err := env.uc.Publish(authedCtx(), PublishInput{
		Name:        "tokio",
		Version:     "1.38.0",
		Archive:     bytes.NewReader(archive),
		ArchiveSize: int64(len(archive)),
		ReadmeHTML:  "<h1>tokio</h1>",
	})
	require.NoError(t, err)

	readme, ok := env.storage.objects["crates-test/readmes/tokio/tokio-1.38.0.html"]
	require.True(t, ok)
	assert.Equal(t, "<h1>tokio</h1>", string(readme))
}

func TestPublishRequiresAuth(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.uc.Publish(context.Background(), PublishInput{
		Name:        "serde",
		Version:     "1.0.0",
		Archive:     bytes.NewReader([]byte("x")),
		ArchiveSize: 1,
	})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
}

func TestPublishRejectsBadNames(t *testing.T) {
	env := newTestEnv(t, "")

	for _, name := range []string{"", "-leading", "has space", "ümlaut"} {
		_, err := env.uc.Publish(authedCtx(), PublishInput{
			Name:        name,
			Version:     "1.0.0",
			Archive:     bytes.NewReader([]byte("x")),
			ArchiveSize: 1,
		})
		assert.Error(t, err, "name %q", name)
	}
}

func TestPublishRejectsBadKeywords(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.uc.Publish(authedCtx(), PublishInput{
		Name:        "serde",
		Version:     "1.0.0",
		Keywords:    []string{"-bad"},
		Archive:     bytes.NewReader([]byte("x")),
		ArchiveSize: 1,
	})
	assert.Error(t, err)
}

func TestPublishDuplicateVersion(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.pubErr = goerror.ErrConflict

	_, err := env.uc.Publish(authedCtx(), PublishInput{
		Name:        "serde",
		Version:     "1.0.0",
		Archive:     bytes.NewReader([]byte("x")),
		ArchiveSize: 1,
	})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeConflict, gerr.Code())
}

func TestDownloadPresigned(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.versions["serde/1.0.0"] = &entity.Version{ID: 11, CrateID: 1, Num: "1.0.0"}

	out, err := env.uc.Download(context.Background(), DownloadInput{Name: "serde", Version: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/crates-test/crates/serde/serde-1.0.0.crate", out.Location)

	select {
	case <-env.counter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("download was never counted")
	}

	env.counter.mu.Lock()
	defer env.counter.mu.Unlock()
	assert.Equal(t, int64(1), env.counter.counts[11])
}

func TestDownloadCDNEscapesBuildMetadata(t *testing.T) {
	env := newTestEnv(t, "storage:\n  bucket: crates-test\n  cdn_host: static.cratebin.dev\n")
	env.repo.versions["semver/1.0.0+build.5"] = &entity.Version{ID: 12, CrateID: 2, Num: "1.0.0+build.5"}

	out, err := env.uc.Download(context.Background(), DownloadInput{Name: "semver", Version: "1.0.0+build.5"})
	require.NoError(t, err)
	assert.Equal(t, "https://static.cratebin.dev/crates/semver/semver-1.0.0%2Bbuild.5.crate", out.Location)
}

func TestDownloadUnknownVersion(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.uc.Download(context.Background(), DownloadInput{Name: "serde", Version: "9.9.9"})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeNotFound, gerr.Code())
}

func TestCrateDetail(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.crates["serde"] = &entity.Crate{ID: 1, Name: "serde", Downloads: 10}
	env.repo.versions["serde/1.0.0"] = &entity.Version{ID: 11, CrateID: 1, Num: "1.0.0"}

	out, err := env.uc.CrateDetail(context.Background(), CrateDetailInput{Name: "serde"})
	require.NoError(t, err)
	assert.Equal(t, "serde", out.Detail.Crate.Name)
	require.Len(t, out.Detail.Versions, 1)
	assert.Equal(t, "1.0.0", out.Detail.Versions[0].Num)
}

func TestCrateDetailNotFound(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.uc.CrateDetail(context.Background(), CrateDetailInput{Name: "missing"})
	assert.Error(t, err)
}

func TestKeywordDetailLowercasesLookup(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.keywords["no-std"] = &entity.Keyword{ID: 1, Keyword: "no-std", CratesCnt: 3}

	out, err := env.uc.KeywordDetail(context.Background(), KeywordDetailInput{Keyword: "No-Std"})
	require.NoError(t, err)
	assert.Equal(t, "no-std", out.Keyword.Keyword)
	assert.Equal(t, int64(3), out.Keyword.CratesCnt)
}

func TestKeywordList(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.keywords["web"] = &entity.Keyword{ID: 1, Keyword: "web", CratesCnt: 5}

	out, err := env.uc.KeywordList(context.Background(), KeywordListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Keywords, 1)
}
