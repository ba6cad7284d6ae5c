package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/domain"
)

type fakeEnvironmentRepo struct {
	envs      map[uuid.UUID]*domain.Environment
	slugReads int
}

func newFakeEnvironmentRepo() *fakeEnvironmentRepo {
	return &fakeEnvironmentRepo{envs: map[uuid.UUID]*domain.Environment{}}
}

func (f *fakeEnvironmentRepo) Create(_ context.Context, e *domain.Environment) error {
	f.envs[e.ID] = e
	return nil
}

func (f *fakeEnvironmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Environment, error) {
	if e, ok := f.envs[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("environment not found")
}

func (f *fakeEnvironmentRepo) GetBySlug(_ context.Context, slug string) (*domain.Environment, error) {
	f.slugReads++
	for _, e := range f.envs {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, apperr.NotFound("environment not found")
}

func (f *fakeEnvironmentRepo) Update(_ context.Context, e *domain.Environment) error {
	if _, ok := f.envs[e.ID]; !ok {
		return apperr.NotFound("environment not found")
	}
	f.envs[e.ID] = e
	return nil
}

func (f *fakeEnvironmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.envs[id]; !ok {
		return apperr.NotFound("environment not found")
	}
	delete(f.envs, id)
	return nil
}

func (f *fakeEnvironmentRepo) List(context.Context) ([]domain.Environment, error) {
	out := make([]domain.Environment, 0, len(f.envs))
	for _, e := range f.envs {
		out = append(out, *e)
	}
	return out, nil
}

func newEnvironmentFixture(t *testing.T) (*EnvironmentService, *fakeEnvironmentRepo, *domain.Environment) {
	t.Helper()

	repo := newFakeEnvironmentRepo()
	svc := NewEnvironmentService(repo, discardPublisher())

	e, err := svc.CreateEnvironment(context.Background(), uuid.New(), CreateEnvironmentInput{
		Name: "Production EU",
		Slug: "prod-eu",
		Tier: domain.TierProd,
	})
	require.NoError(t, err)

	return svc, repo, e
}

func TestResolveEnvironmentServedFromCache(t *testing.T) {
	svc, repo, env := newEnvironmentFixture(t)

	first, err := svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.NoError(t, err)
	assert.Equal(t, env.ID, first.ID)
	assert.Equal(t, 1, repo.slugReads)

	second, err := svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.NoError(t, err)
	assert.Equal(t, env.ID, second.ID)
	assert.Equal(t, 1, repo.slugReads, "a repeat resolve must not hit storage")
}

func TestUpdateEnvironmentInvalidatesCache(t *testing.T) {
	svc, repo, env := newEnvironmentFixture(t)

	_, err := svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.NoError(t, err)
	require.Equal(t, 1, repo.slugReads)

	name := "Production EU (Frankfurt)"
	_, err = svc.UpdateEnvironment(context.Background(), uuid.New(), env.ID, UpdateEnvironmentInput{Name: &name})
	require.NoError(t, err)

	// The next resolve must observe the update, not the cached copy.
	resolved, err := svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.NoError(t, err)
	assert.Equal(t, name, resolved.Name)
	assert.Equal(t, 2, repo.slugReads)
}

func TestDeleteEnvironmentInvalidatesCache(t *testing.T) {
	svc, repo, env := newEnvironmentFixture(t)

	_, err := svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.NoError(t, err)
	require.Equal(t, 1, repo.slugReads)

	require.NoError(t, svc.DeleteEnvironment(context.Background(), uuid.New(), env.ID))

	_, err = svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.Error(t, err, "a deleted environment must not resolve from cache")

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestResolveEnvironmentCachesCopies(t *testing.T) {
	svc, _, _ := newEnvironmentFixture(t)

	first, err := svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.NoError(t, err)

	// Callers may mutate the returned value without corrupting the cache.
	first.Name = "scribbled over"

	second, err := svc.ResolveEnvironment(context.Background(), "prod-eu")
	require.NoError(t, err)
	assert.Equal(t, "Production EU", second.Name)
}
