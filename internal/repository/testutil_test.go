package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shinyyama/broadcast-feed/internal/db"
	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := db.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	gdb, err := db.Open(sqlite.Open(dsn), false)
	require.NoError(t, err, "open test db")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database and its pragmas alive.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, db.Migrate(gdb), "migrate test db")
	return gdb
}

func newTestRepos(t *testing.T) (MessageRepository, ProfileRepository, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	h := NewHandle(gdb)
	return NewMessageRepository(h), NewProfileRepository(h), gdb
}

func mustProfile(t *testing.T, profiles ProfileRepository, userName string) int64 {
	t.Helper()
	id, err := profiles.InsertProfile(context.Background(), NewProfile{
		UserName:    userName,
		FullName:    strings.ToUpper(userName[:1]) + userName[1:],
		Description: "profile of " + userName,
	})
	require.NoError(t, err, "insert profile %q", userName)
	return id
}

func mustFollow(t *testing.T, profiles ProfileRepository, followerID, followingID int64) {
	t.Helper()
	_, err := profiles.FollowUser(context.Background(), followerID, followingID)
	require.NoError(t, err, "follow %d -> %d", followerID, followingID)
}

func mustMessage(t *testing.T, messages MessageRepository, userID int64, body string, target *int64) int64 {
	t.Helper()
	id, err := messages.InsertMessage(context.Background(), NewMessage{
		UserID:            userID,
		Body:              body,
		GroupType:         model.MessageGroupPublic,
		BroadcastingMsgID: target,
	})
	require.NoError(t, err, "insert message %q", body)
	return id
}

// setUpdatedAt pins a message timestamp so ordering does not depend on the clock.
func setUpdatedAt(t *testing.T, gdb *gorm.DB, id int64, ts time.Time) {
	t.Helper()
	err := gdb.Model(&model.Message{}).Where("id = ?", id).UpdateColumn("updated_at", ts.UTC()).Error
	require.NoError(t, err)
}

func countRows(t *testing.T, gdb *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(m).Count(&n).Error)
	return n
}

// deleteMessageUnchecked removes a message bypassing foreign keys, the way a
// target can vanish under a link that already exists.
func deleteMessageUnchecked(t *testing.T, gdb *gorm.DB, id int64) {
	t.Helper()
	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, gdb.Exec("DELETE FROM message WHERE id = ?", id).Error)
	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = ON").Error)
}

func int64Ptr(v int64) *int64 {
	return &v
}

var errInjectedRead = errors.New("injected read failure")

// readRecorder counts the read statements issued through a test DB and can
// fail the n-th one before it reaches the engine.
type readRecorder struct {
	mu     sync.Mutex
	sqls   []string
	n      int
	failOn int
}

func recordReads(t *testing.T, gdb *gorm.DB) *readRecorder {
	t.Helper()
	rec := &readRecorder{}
	before := func(tx *gorm.DB) {
		rec.mu.Lock()
		rec.n++
		fail := rec.failOn > 0 && rec.n == rec.failOn
		rec.mu.Unlock()
		if fail {
			_ = tx.AddError(errInjectedRead)
		}
	}
	after := func(tx *gorm.DB) {
		rec.mu.Lock()
		rec.sqls = append(rec.sqls, tx.Statement.SQL.String())
		rec.mu.Unlock()
	}
	require.NoError(t, gdb.Callback().Query().Before("gorm:query").Register("test:count_query", before))
	require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("test:record_query", after))
	require.NoError(t, gdb.Callback().Row().Before("gorm:row").Register("test:count_row", before))
	require.NoError(t, gdb.Callback().Row().After("gorm:row").Register("test:record_row", after))
	return rec
}

func (r *readRecorder) failNth(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn = n
}

func (r *readRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n, r.sqls = 0, nil
}

func (r *readRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func (r *readRecorder) statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sqls...)
}
