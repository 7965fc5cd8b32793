package service

import (
	"casegrader/internal/model"
	"casegrader/internal/repository"
	"casegrader/internal/util"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProgressService(db *gorm.DB) *ProgressService {
	return NewProgressService(
		repository.NewCaseRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewProgressRepository(db),
		repository.NewProgressCache(nil, 0),
	)
}

func TestGetProgress_UnseenWithoutAttempts(t *testing.T) {
	db := newTestDB(t)
	c := seedCase(t, db, centerCircle)

	rec, err := newProgressService(db).GetProgress(context.Background(), testUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnseen, rec.Status)
	assert.Zero(t, rec.CorrectCount)
	assert.Zero(t, rec.WrongCount)
	assert.Nil(t, rec.LastAttemptID)

	// reading must not create a row
	assert.Zero(t, countRows(t, db, &model.ProgressRecord{}))
}

func TestGetProgress_AfterAttempts(t *testing.T) {
	db := newTestDB(t)
	c := seedCase(t, db, centerCircle)
	eval := newEvaluationService(db)

	_, err := eval.Submit(context.Background(), testUser, miss(c))
	require.NoError(t, err)
	last, err := eval.Submit(context.Background(), testUser, perfect(c))
	require.NoError(t, err)

	rec, err := newProgressService(db).GetProgress(context.Background(), testUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReattemptCorrect, rec.Status)
	assert.Equal(t, 1, rec.CorrectCount)
	assert.Equal(t, 1, rec.WrongCount)
	require.NotNil(t, rec.LastAttemptID)
	assert.Equal(t, last.Attempt.ID, *rec.LastAttemptID)
}

func TestGetProgress_UnknownCase(t *testing.T) {
	db := newTestDB(t)

	_, err := newProgressService(db).GetProgress(context.Background(), testUser, 404)
	assert.ErrorIs(t, err, util.ErrCaseNotFound)
}

func TestGetAttempt_Ownership(t *testing.T) {
	db := newTestDB(t)
	c := seedCase(t, db, centerCircle)
	res, err := newEvaluationService(db).Submit(context.Background(), testUser, perfect(c))
	require.NoError(t, err)

	s := newProgressService(db)

	a, err := s.GetAttempt(context.Background(), testUser, res.Attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Attempt.FinalScore, a.FinalScore)

	_, err = s.GetAttempt(context.Background(), testUser+1, res.Attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)

	_, err = s.GetAttempt(context.Background(), testUser, "missing")
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestGetProgress_CacheDownFallsBackToDatabase(t *testing.T) {
	db := newTestDB(t)
	c := seedCase(t, db, centerCircle)
	_, err := newEvaluationService(db).Submit(context.Background(), testUser, perfect(c))
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	s := newProgressService(db)
	s.Cache = repository.NewProgressCache(rdb, time.Minute)

	rec, err := s.GetProgress(context.Background(), testUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCorrect, rec.Status)
}

func TestGetProgress_DelayedCacheWriteDoesNotHideNewerAttempt(t *testing.T) {
	db := newTestDB(t)
	c := seedCase(t, db, centerCircle)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	cache := repository.NewProgressCache(rdb, time.Minute)

	eval := newEvaluationService(db)
	eval.Cache = cache
	progress := newProgressService(db)
	progress.Cache = cache

	first, err := eval.Submit(ctx, testUser, miss(c))
	require.NoError(t, err)
	_, err = eval.Submit(ctx, testUser, perfect(c))
	require.NoError(t, err)

	// the first request's post-commit write lands after the second one
	written, err := cache.Set(ctx, first.Progress)
	require.NoError(t, err)
	assert.False(t, written)

	rec, err := progress.GetProgress(ctx, testUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReattemptCorrect, rec.Status)
	assert.Equal(t, 1, rec.CorrectCount)
	assert.Equal(t, 1, rec.WrongCount)

	// a cold read-through stores the committed row
	mr.FlushAll()
	rec, err = progress.GetProgress(ctx, testUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReattemptCorrect, rec.Status)
	cached, ok, err := cache.Get(ctx, testUser, c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, cached.CorrectCount+cached.WrongCount)
}

func TestGetProgress_UnseenIsNotCached(t *testing.T) {
	db := newTestDB(t)
	c := seedCase(t, db, centerCircle)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := newProgressService(db)
	s.Cache = repository.NewProgressCache(rdb, time.Minute)

	rec, err := s.GetProgress(context.Background(), testUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnseen, rec.Status)
	assert.Empty(t, mr.Keys())
}
