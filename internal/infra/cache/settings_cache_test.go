package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/models"
)

// stubRepo conta quantas vezes o banco foi tocado.
type stubRepo struct {
	domain.Repository

	settings      *models.CompanySettings
	profile       *models.Profile
	settingsCalls int
	profileCalls  int
}

func (s *stubRepo) GetSettings(_ context.Context, _ uint) (*models.CompanySettings, error) {
	s.settingsCalls++
	return s.settings, nil
}

func (s *stubRepo) GetProfile(_ context.Context, _ uint) (*models.Profile, error) {
	s.profileCalls++
	return s.profile, nil
}

func newCached(t *testing.T, repo *stubRepo) *CachedRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewCachedRepository(repo, rdb, time.Minute)
}

func TestGetSettingsCachesSecondRead(t *testing.T) {
	repo := &stubRepo{
		settings: &models.CompanySettings{CompanyID: 1, MaxSimultaneousAppointments: 2},
	}
	cached := newCached(t, repo)

	first, err := cached.GetSettings(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cached.GetSettings(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, 2, second.MaxSimultaneousAppointments)
	assert.Equal(t, 1, repo.settingsCalls)
}

func TestGetProfileCachesAdminFlag(t *testing.T) {
	repo := &stubRepo{profile: &models.Profile{CompanyID: 1, IsAdmin: true}}
	cached := newCached(t, repo)

	for i := 0; i < 3; i++ {
		profile, err := cached.GetProfile(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.True(t, profile.IsAdmin)
	}

	assert.Equal(t, 1, repo.profileCalls)
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &stubRepo{
		settings: &models.CompanySettings{CompanyID: 1, MaxSimultaneousAppointments: 2},
	}
	cached := newCached(t, repo)

	_, err := cached.GetSettings(context.Background(), 1)
	require.NoError(t, err)

	repo.settings = &models.CompanySettings{CompanyID: 1, MaxSimultaneousAppointments: 5}
	cached.Invalidate(context.Background(), 1)

	reloaded, err := cached.GetSettings(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.MaxSimultaneousAppointments)
	assert.Equal(t, 2, repo.settingsCalls)
}

func TestMissingSettingsNotCached(t *testing.T) {
	repo := &stubRepo{}
	cached := newCached(t, repo)

	settings, err := cached.GetSettings(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, settings)

	_, err = cached.GetSettings(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.settingsCalls)
}
