package repos

import (
    "context"
    "errors"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "gorm.io/gorm"

    "github.com/slotter-org/slotter-chat/internal/db"
    "github.com/slotter-org/slotter-chat/internal/logger"
    "github.com/slotter-org/slotter-chat/internal/types"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (MessageRepo, *gorm.DB) {
    t.Helper()
    svc, err := db.NewSqliteService(logger.NewNop(), filepath.Join(t.TempDir(), db.DBFileName))
    require.NoError(t, err)
    require.NoError(t, svc.AutoMigrateAll())
    t.Cleanup(func() { svc.Close() })
    return NewMessageRepo(svc.DB(), logger.NewNop()), svc.DB()
}

func mustCreate(t *testing.T, repo MessageRepo, q, a, chatID string, ts time.Time) *types.Message {
    t.Helper()
    msg, err := repo.Create(context.Background(), nil, &types.Message{
        Question:  q,
        Answer:    a,
        ChatID:    chatID,
        Timestamp: ts,
    })
    require.NoError(t, err)
    return msg
}

func TestMessageRepo_CreateAssignsIDAndDefaults(t *testing.T) {
    repo, _ := newTestRepo(t)

    first := mustCreate(t, repo, "What is AI?", "AI is...", "", time.Time{})
    second := mustCreate(t, repo, "Follow-up", "More info", "c1", baseTime)

    assert.NotZero(t, first.ID)
    assert.Greater(t, second.ID, first.ID)
    assert.Equal(t, types.DefaultChatID, first.ChatID)
    assert.False(t, first.Timestamp.IsZero())
    assert.False(t, first.CreatedAt.IsZero())
    assert.True(t, first.CreatedAt.Equal(first.UpdatedAt))
}

func TestMessageRepo_CreateUsesGivenTransaction(t *testing.T) {
    repo, gdb := newTestRepo(t)
    ctx := context.Background()
    errAbort := errors.New("abort")

    err := gdb.Transaction(func(tx *gorm.DB) error {
        _, createErr := repo.Create(ctx, tx, &types.Message{Question: "q", Answer: "a", ChatID: "c1", Timestamp: baseTime})
        require.NoError(t, createErr)
        return errAbort
    })
    require.ErrorIs(t, err, errAbort)

    history, err := repo.GetHistory(ctx, nil, "c1", 10)
    require.NoError(t, err)
    assert.Empty(t, history)
}

func TestMessageRepo_CreateRejectsEmptyQuestion(t *testing.T) {
    repo, _ := newTestRepo(t)

    _, err := repo.Create(context.Background(), nil, &types.Message{Answer: "x"})
    require.Error(t, err)
    assert.Equal(t, ReasonInvalid, ReasonOf(err))
    assert.True(t, errors.Is(err, ErrEmptyQuestion))
}

func TestMessageRepo_CreateTimestampCollision(t *testing.T) {
    repo, gdb := newTestRepo(t)
    mustCreate(t, repo, "q1", "a1", "c1", baseTime)

    _, err := repo.Create(context.Background(), nil, &types.Message{
        Question: "q2", Answer: "a2", ChatID: "c1", Timestamp: baseTime,
    })
    require.Error(t, err)
    assert.True(t, errors.Is(err, ErrConstraint))

    // same instant in another chat is fine
    mustCreate(t, repo, "q3", "a3", "c2", baseTime)

    var count int64
    require.NoError(t, gdb.Model(&types.Message{}).Count(&count).Error)
    assert.Equal(t, int64(2), count)
}

func TestMessageRepo_GetHistoryOrderScopeLimit(t *testing.T) {
    repo, _ := newTestRepo(t)
    ctx := context.Background()
    for i := 0; i < 5; i++ {
        mustCreate(t, repo, "a-q", "a-a", "A", baseTime.Add(time.Duration(i)*time.Second))
    }
    mustCreate(t, repo, "b-q", "b-a", "B", baseTime.Add(10*time.Second))

    msgs, err := repo.GetHistory(ctx, nil, "A", 50)
    require.NoError(t, err)
    require.Len(t, msgs, 5)
    for i := 1; i < len(msgs); i++ {
        assert.True(t, msgs[i-1].Timestamp.After(msgs[i].Timestamp))
    }
    for _, m := range msgs {
        assert.Equal(t, "A", m.ChatID)
    }

    limited, err := repo.GetHistory(ctx, nil, "A", 2)
    require.NoError(t, err)
    require.Len(t, limited, 2)
    assert.True(t, limited[0].Timestamp.Equal(baseTime.Add(4*time.Second)))

    all, err := repo.GetHistory(ctx, nil, "", 50)
    require.NoError(t, err)
    require.Len(t, all, 6)
    assert.Equal(t, "B", all[0].ChatID)

    none, err := repo.GetHistory(ctx, nil, "A", 0)
    require.NoError(t, err)
    assert.Empty(t, none)
}

func TestMessageRepo_DeleteByChatID(t *testing.T) {
    repo, _ := newTestRepo(t)
    ctx := context.Background()
    mustCreate(t, repo, "q1", "a1", "X", baseTime)
    mustCreate(t, repo, "q2", "a2", "X", baseTime.Add(time.Second))
    mustCreate(t, repo, "q3", "a3", "Y", baseTime)

    n, err := repo.DeleteByChatID(ctx, nil, "X")
    require.NoError(t, err)
    assert.Equal(t, int64(2), n)

    n, err = repo.DeleteByChatID(ctx, nil, "X")
    require.NoError(t, err)
    assert.Zero(t, n)

    left, err := repo.GetHistory(ctx, nil, "", 50)
    require.NoError(t, err)
    require.Len(t, left, 1)
    assert.Equal(t, "Y", left[0].ChatID)
}

func TestMessageRepo_GetFolders(t *testing.T) {
    repo, _ := newTestRepo(t)
    ctx := context.Background()
    mustCreate(t, repo, "first in c1", "a", "c1", baseTime)
    mustCreate(t, repo, "second in c1", "a", "c1", baseTime.Add(5*time.Second))
    mustCreate(t, repo, "only in c2", "a", "c2", baseTime.Add(2*time.Second))

    folders, err := repo.GetFolders(ctx, nil)
    require.NoError(t, err)
    require.Len(t, folders, 2)

    assert.Equal(t, "c1", folders[0].ChatID)
    assert.Equal(t, "first in c1", folders[0].Question)
    assert.True(t, folders[0].LastMessage.Equal(baseTime.Add(5*time.Second)), "got %v", folders[0].LastMessage)

    assert.Equal(t, "c2", folders[1].ChatID)
    assert.Equal(t, "only in c2", folders[1].Question)
    assert.True(t, folders[1].LastMessage.Equal(baseTime.Add(2*time.Second)))
}

func TestMessageRepo_GetFoldersEmpty(t *testing.T) {
    repo, _ := newTestRepo(t)

    folders, err := repo.GetFolders(context.Background(), nil)
    require.NoError(t, err)
    assert.NotNil(t, folders)
    assert.Empty(t, folders)
}

func TestMessageRepo_SearchCaseSensitive(t *testing.T) {
    repo, _ := newTestRepo(t)
    ctx := context.Background()
    mustCreate(t, repo, "Tell me about Go", "Go is a language", "c1", baseTime)
    mustCreate(t, repo, "what about rust", "it has a borrow checker", "c2", baseTime.Add(time.Second))
    mustCreate(t, repo, "and python?", "go and see", "c3", baseTime.Add(2*time.Second))

    hits, err := repo.Search(ctx, nil, "Go", 10)
    require.NoError(t, err)
    require.Len(t, hits, 1)
    assert.Equal(t, "c1", hits[0].ChatID)

    hits, err = repo.Search(ctx, nil, "borrow", 10)
    require.NoError(t, err)
    require.Len(t, hits, 1)
    assert.Equal(t, "c2", hits[0].ChatID)

    hits, err = repo.Search(ctx, nil, "about", 1)
    require.NoError(t, err)
    require.Len(t, hits, 1)
    assert.Equal(t, "c2", hits[0].ChatID)
}

func TestMessageRepo_ClosedDatabaseIsUnavailable(t *testing.T) {
    repo, gdb := newTestRepo(t)
    sqlDB, err := gdb.DB()
    require.NoError(t, err)
    require.NoError(t, sqlDB.Close())

    _, err = repo.GetHistory(context.Background(), nil, "c1", 10)
    require.Error(t, err)
    assert.Equal(t, ReasonUnavailable, ReasonOf(err))
}

func TestStoreError_Is(t *testing.T) {
    err := &StoreError{Op: "delete chat", Reason: ReasonUnavailable, Err: errors.New("disk I/O error")}

    assert.True(t, errors.Is(err, ErrUnavailable))
    assert.False(t, errors.Is(err, ErrConstraint))
    assert.Contains(t, err.Error(), "delete chat: unavailable: disk I/O error")
    assert.Equal(t, ReasonUnknown, ReasonOf(errors.New("plain")))
}
