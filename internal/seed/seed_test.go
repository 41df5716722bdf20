package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shinyyama/broadcast-feed/internal/db"
	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/shinyyama/broadcast-feed/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	gdb, err := db.Open(sqlite.Open(db.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))), false)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func TestRunSeedsFeed(t *testing.T) {
	gdb := newTestDB(t)
	h := repository.NewHandle(gdb)
	profiles := repository.NewProfileRepository(h)
	messages := repository.NewMessageRepository(h)

	res, err := New(profiles, messages).Run(context.Background(), Options{
		Profiles: 3, Messages: 12, BroadcastRatio: 0.5, Workers: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Profiles: 3, Follows: 6, Messages: 12, Broadcasts: 6}, res)

	var links int64
	require.NoError(t, gdb.Model(&model.MessageBroadcast{}).Count(&links).Error)
	assert.Equal(t, int64(6), links)

	first, err := profiles.QueryProfileByUserName(context.Background(), "user000")
	require.NoError(t, err)
	require.NotNil(t, first)
	feed, err := messages.QueryMessages(context.Background(), first.ID, timeNowPlusHour(), 100)
	require.NoError(t, err)
	// user000 follows the other two and sees everything they wrote.
	var own int
	for _, v := range feed {
		if v.Author.ID == first.ID {
			own++
		}
	}
	assert.Zero(t, own)
	assert.NotEmpty(t, feed)
}

func TestRunIsRepeatable(t *testing.T) {
	gdb := newTestDB(t)
	h := repository.NewHandle(gdb)
	s := New(repository.NewProfileRepository(h), repository.NewMessageRepository(h))

	_, err := s.Run(context.Background(), Options{Profiles: 2, Messages: 2})
	require.NoError(t, err)
	res, err := s.Run(context.Background(), Options{Profiles: 2, Messages: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Profiles)
	assert.Zero(t, res.Follows, "existing follow edges are skipped")
	assert.Equal(t, 2, res.Messages)
}

func TestOptionsValidate(t *testing.T) {
	s := New(nil, nil)
	for _, opts := range []Options{
		{Profiles: 0, Messages: 1},
		{Profiles: 1, Messages: -1},
		{Profiles: 1, BroadcastRatio: 1.5},
	} {
		_, err := s.Run(context.Background(), opts)
		assert.Error(t, err, "%+v", opts)
	}
}

func timeNowPlusHour() time.Time {
	return time.Now().Add(time.Hour)
}
