package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cratebin/cratebin/internal/credential/entity"
	"github.com/cratebin/cratebin/internal/pkg/clock"
	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/goroutine"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/pkg/token"
	"github.com/cratebin/cratebin/internal/pkg/validator"
)

type fakeRepo struct {
	mu      sync.Mutex
	nextErr error

	created   []entity.NewAPIToken
	tokens    map[int64]*entity.APIToken
	byDigest  map[token.HashedToken]*entity.APIToken
	touched   []int64
	touchDone chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tokens:    make(map[int64]*entity.APIToken),
		byDigest:  make(map[token.HashedToken]*entity.APIToken),
		touchDone: make(chan struct{}, 8),
	}
}

func (f *fakeRepo) add(t entity.APIToken, digest token.HashedToken) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := t
	f.tokens[t.ID] = &cp
	f.byDigest[digest] = &cp
}

func (f *fakeRepo) CreateToken(_ context.Context, in entity.NewAPIToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return f.nextErr
	}
	f.created = append(f.created, in)
	return nil
}

func (f *fakeRepo) GetTokensByUserID(_ context.Context, userID int64) ([]entity.APIToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	out := make([]entity.APIToken, 0)
	for _, t := range f.tokens {
		if t.UserID == userID && !t.Revoked {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetTokenByDigest(_ context.Context, digest token.HashedToken) (*entity.APIToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	t, ok := f.byDigest[digest]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) RevokeToken(_ context.Context, id, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return f.nextErr
	}
	t, ok := f.tokens[id]
	if !ok || t.UserID != userID || t.Revoked {
		return goerror.ErrNotFound
	}
	t.Revoked = true
	return nil
}

func (f *fakeRepo) TouchTokenLastUsed(_ context.Context, id int64) error {
	f.mu.Lock()
	f.touched = append(f.touched, id)
	f.mu.Unlock()
	f.touchDone <- struct{}{}
	return nil
}

type staticID struct{ id int64 }

func (s staticID) Generate() int64 { return s.id }

func newTestUsecase(t *testing.T, repo *fakeRepo) *Usecase {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return New(Dependency{
		RepoDB:     repo,
		Validator:  v,
		UID:        staticID{id: 99},
		Clock:      clock.Static{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Instrument: instrument.NewNoop(),
		Goroutine:  goroutine.NewManager(4),
	})
}

func authedCtx(userID int64) context.Context {
	return router.SetAuth(context.Background(), router.AuthUser{TokenID: 1, UserID: userID, TokenName: "ci"})
}

func TestTokenCreate(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo)

	out, err := uc.TokenCreate(authedCtx(7), TokenCreateInput{Name: "publish-bot"})
	require.NoError(t, err)

	assert.Equal(t, int64(99), out.Token.ID)
	assert.Equal(t, int64(7), out.Token.UserID)
	assert.Equal(t, "publish-bot", out.Token.Name)

	// disclosed plaintext recognizes and hashes back to what was stored
	hashed, ok := token.Parse(out.Plaintext)
	require.True(t, ok)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].TokenHash.Equal(hashed))
}

func TestTokenCreateRequiresAuth(t *testing.T) {
	uc := newTestUsecase(t, newFakeRepo())

	_, err := uc.TokenCreate(context.Background(), TokenCreateInput{Name: "x"})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
}

func TestTokenCreateRejectsEmptyName(t *testing.T) {
	uc := newTestUsecase(t, newFakeRepo())

	_, err := uc.TokenCreate(authedCtx(7), TokenCreateInput{Name: ""})
	assert.Error(t, err)
}

func TestTokenListScopedToUser(t *testing.T) {
	repo := newFakeRepo()
	repo.add(entity.APIToken{ID: 1, UserID: 7, Name: "mine"}, token.Digest("cioaaa"))
	repo.add(entity.APIToken{ID: 2, UserID: 8, Name: "theirs"}, token.Digest("ciobbb"))
	uc := newTestUsecase(t, repo)

	out, err := uc.TokenList(authedCtx(7))
	require.NoError(t, err)

	require.Len(t, out.Tokens, 1)
	assert.Equal(t, "mine", out.Tokens[0].Name)
}

func TestTokenDelete(t *testing.T) {
	repo := newFakeRepo()
	repo.add(entity.APIToken{ID: 5, UserID: 7, Name: "old"}, token.Digest("cioccc"))
	uc := newTestUsecase(t, repo)

	require.NoError(t, uc.TokenDelete(authedCtx(7), TokenDeleteInput{ID: 5}))

	// second revoke reports not found
	err := uc.TokenDelete(authedCtx(7), TokenDeleteInput{ID: 5})
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeNotFound, gerr.Code())
}

func TestTokenDeleteOtherUsersToken(t *testing.T) {
	repo := newFakeRepo()
	repo.add(entity.APIToken{ID: 5, UserID: 8, Name: "theirs"}, token.Digest("cioddd"))
	uc := newTestUsecase(t, repo)

	err := uc.TokenDelete(authedCtx(7), TokenDeleteInput{ID: 5})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	secret, err := token.Generate()
	require.NoError(t, err)

	repo := newFakeRepo()
	repo.add(entity.APIToken{ID: 3, UserID: 7, Name: "ci"}, secret.Hashed())
	uc := newTestUsecase(t, repo)

	out, err := uc.Authenticate(context.Background(), AuthenticateInput{Plaintext: secret.Plaintext()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Token.ID)
	assert.Equal(t, int64(7), out.Token.UserID)

	select {
	case <-repo.touchDone:
	case <-time.After(2 * time.Second):
		t.Fatal("last used was never touched")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []int64{3}, repo.touched)
}

func TestAuthenticateRejectsForeignShape(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo)

	_, err := uc.Authenticate(context.Background(), AuthenticateInput{Plaintext: "not-a-registry-token"})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
}

func TestAuthenticateUnknownToken(t *testing.T) {
	secret, err := token.Generate()
	require.NoError(t, err)

	uc := newTestUsecase(t, newFakeRepo())

	_, err = uc.Authenticate(context.Background(), AuthenticateInput{Plaintext: secret.Plaintext()})
	assert.Error(t, err)
}

func TestAuthenticateRevokedToken(t *testing.T) {
	secret, err := token.Generate()
	require.NoError(t, err)

	repo := newFakeRepo()
	repo.add(entity.APIToken{ID: 4, UserID: 7, Name: "gone", Revoked: true}, secret.Hashed())
	uc := newTestUsecase(t, repo)

	_, err = uc.Authenticate(context.Background(), AuthenticateInput{Plaintext: secret.Plaintext()})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
}

func TestAuthenticateRepoFailure(t *testing.T) {
	secret, err := token.Generate()
	require.NoError(t, err)

	repo := newFakeRepo()
	repo.nextErr = errors.New("connection refused")
	uc := newTestUsecase(t, repo)

	_, err = uc.Authenticate(context.Background(), AuthenticateInput{Plaintext: secret.Plaintext()})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeServer, gerr.Type())
}
