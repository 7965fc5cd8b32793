package repository

import (
	"casegrader/internal/config"
	"casegrader/internal/model"
	"casegrader/pkg/database"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestLockForAttempt_CreatesOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewProgressRepository(db).WithTx(tx)
		first, err := repo.LockForAttempt(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, model.StatusUnseen, first.Status)

		first.Status = model.StatusWrong
		first.WrongCount = 1
		require.NoError(t, repo.Save(ctx, first))

		again, err := repo.LockForAttempt(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, model.StatusWrong, again.Status)
		assert.Equal(t, 1, again.WrongCount)
		return nil
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&model.ProgressRecord{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestFindByUserAndCase_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := NewProgressRepository(db).FindByUserAndCase(context.Background(), 1, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCaseRepository_FindForGradingOrdersOptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewCaseRepository(db)

	c := &model.Case{
		Title:          "Chest",
		LesionGeometry: []byte(`{"type":"circle","cx":0.5,"cy":0.5,"r":0.1}`),
		Findings:       []model.CaseFinding{{Label: "a", Required: true}, {Label: "b"}},
		Diagnoses:      []model.CaseDiagnosis{{Name: "x", Weight: 2}, {Name: "y", Weight: 1}},
	}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.FindForGrading(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.Version)
	require.Len(t, got.Findings, 2)
	assert.Equal(t, "a", got.Findings[0].Label)
	require.Len(t, got.Diagnoses, 2)
	assert.Equal(t, "x", got.Diagnoses[0].Name)

	_, err = repo.FindForGrading(ctx, c.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProgressCache_Disabled(t *testing.T) {
	cache := NewProgressCache(nil, 0)
	assert.Equal(t, 10*time.Minute, cache.TTL)

	ctx := context.Background()
	written, err := cache.Set(ctx, &model.ProgressRecord{UserID: 1, CaseID: 2})
	require.NoError(t, err)
	assert.False(t, written)
	rec, ok, err := cache.Get(ctx, 1, 2)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
	assert.NoError(t, cache.Invalidate(ctx, 1, 2))
}

func TestProgressCache_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	cache := NewProgressCache(rdb, time.Minute)
	_, ok, err := cache.Get(context.Background(), 1, 2)
	assert.Error(t, err)
	assert.False(t, ok)
}

func newMiniredisCache(t *testing.T, ttl time.Duration) (*ProgressCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewProgressCache(rdb, ttl), mr
}

func progressAfter(correct, wrong int, status model.ProgressStatus, attemptID string, score float64, at time.Time) *model.ProgressRecord {
	return &model.ProgressRecord{
		UserID:        7,
		CaseID:        9,
		Status:        status,
		CorrectCount:  correct,
		WrongCount:    wrong,
		LastAttemptID: &attemptID,
		LastScore:     &score,
		LastAttemptAt: &at,
	}
}

func TestProgressCache_RoundTrip(t *testing.T) {
	cache, _ := newMiniredisCache(t, time.Minute)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	in := progressAfter(1, 1, model.StatusReattemptCorrect, "a-2", 0.85, at)
	in.ID = 3
	written, err := cache.Set(ctx, in)
	require.NoError(t, err)
	assert.True(t, written)

	out, ok, err := cache.Get(ctx, 7, 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint(3), out.ID)
	assert.Equal(t, model.StatusReattemptCorrect, out.Status)
	assert.Equal(t, 1, out.CorrectCount)
	assert.Equal(t, 1, out.WrongCount)
	require.NotNil(t, out.LastAttemptID)
	assert.Equal(t, "a-2", *out.LastAttemptID)
	require.NotNil(t, out.LastScore)
	assert.Equal(t, 0.85, *out.LastScore)
	require.NotNil(t, out.LastAttemptAt)
	assert.True(t, at.Equal(*out.LastAttemptAt))

	_, ok, err = cache.Get(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProgressCache_UnseenRecordOmitsLastAttempt(t *testing.T) {
	cache, _ := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	_, err := cache.Set(ctx, &model.ProgressRecord{UserID: 7, CaseID: 9, Status: model.StatusUnseen})
	require.NoError(t, err)

	out, ok, err := cache.Get(ctx, 7, 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.StatusUnseen, out.Status)
	assert.Nil(t, out.LastAttemptID)
	assert.Nil(t, out.LastScore)
	assert.Nil(t, out.LastAttemptAt)
}

func TestProgressCache_Expires(t *testing.T) {
	cache, mr := newMiniredisCache(t, 30*time.Second)
	ctx := context.Background()

	_, err := cache.Set(ctx, progressAfter(1, 0, model.StatusCorrect, "a-1", 1, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL(progressKey(7, 9)))

	mr.FastForward(31 * time.Second)
	_, ok, err := cache.Get(ctx, 7, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProgressCache_OlderRecordDoesNotOverwrite(t *testing.T) {
	cache, _ := newMiniredisCache(t, time.Minute)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := progressAfter(0, 1, model.StatusWrong, "a-1", 0, at)
	newer := progressAfter(1, 1, model.StatusReattemptCorrect, "a-2", 1, at.Add(time.Minute))

	written, err := cache.Set(ctx, newer)
	require.NoError(t, err)
	assert.True(t, written)

	// a delayed writer still holding the first attempt's record
	written, err = cache.Set(ctx, older)
	require.NoError(t, err)
	assert.False(t, written)

	out, ok, err := cache.Get(ctx, 7, 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.StatusReattemptCorrect, out.Status)
	assert.Equal(t, "a-2", *out.LastAttemptID)

	// the same attempt count refreshes the entry
	same := progressAfter(1, 1, model.StatusReattemptCorrect, "a-2", 1, at.Add(time.Minute))
	written, err = cache.Set(ctx, same)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestProgressCache_Invalidate(t *testing.T) {
	cache, mr := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	_, err := cache.Set(ctx, progressAfter(1, 0, model.StatusCorrect, "a-1", 1, time.Now()))
	require.NoError(t, err)
	require.True(t, mr.Exists(progressKey(7, 9)))

	require.NoError(t, cache.Invalidate(ctx, 7, 9))
	assert.False(t, mr.Exists(progressKey(7, 9)))
	_, ok, err := cache.Get(ctx, 7, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProgressKey(t *testing.T) {
	assert.Equal(t, "casegrader:progress:3:14", progressKey(3, 14))
}
