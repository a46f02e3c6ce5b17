package repos

import (
    "context"
    "time"

    "gorm.io/gorm"

    "github.com/slotter-org/slotter-chat/internal/logger"
    "github.com/slotter-org/slotter-chat/internal/types"
)

type MessageRepo interface {
    Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error)
    GetHistory(ctx context.Context, tx *gorm.DB, chatID string, limit int) ([]*types.Message, error)
    DeleteByChatID(ctx context.Context, tx *gorm.DB, chatID string) (int64, error)
    GetFolders(ctx context.Context, tx *gorm.DB) ([]*types.ChatFolder, error)
    Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Message, error)
}

type messageRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
    return &messageRepo{
        db:     db,
        log:    baseLog.With("repo", "MessageRepo"),
    }
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    if msg == nil || msg.Question == "" {
        mr.log.Warn("refusing to create message without a question")
        return nil, &StoreError{Op: "create message", Reason: ReasonInvalid, Err: ErrEmptyQuestion}
    }
    if msg.ChatID == "" {
        msg.ChatID = types.DefaultChatID
    }
    if msg.Timestamp.IsZero() {
        msg.Timestamp = time.Now().UTC()
    }
    if err := tx.WithContext(ctx).Create(msg).Error; err != nil {
        mr.log.Error("failed to create message", "chatID", msg.ChatID, "error", err)
        return nil, wrapErr("create message", err)
    }
    mr.log.Debug("message created", "id", msg.ID, "chatID", msg.ChatID)
    return msg, nil
}

// GetHistory returns up to limit messages, newest first. An empty chatID
// means every chat.
func (mr *messageRepo) GetHistory(ctx context.Context, tx *gorm.DB, chatID string, limit int) ([]*types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    msgs := []*types.Message{}
    if limit <= 0 {
        return msgs, nil
    }
    query := tx.WithContext(ctx).Model(&types.Message{})
    if chatID != "" {
        query = query.Where("chat_id = ?", chatID)
    }
    if err := query.
        Order("timestamp DESC").
        Order("id DESC").
        Limit(limit).
        Find(&msgs).Error; err != nil {
        mr.log.Error("failed to get chat history", "chatID", chatID, "error", err)
        return nil, wrapErr("get chat history", err)
    }
    return msgs, nil
}

func (mr *messageRepo) DeleteByChatID(ctx context.Context, tx *gorm.DB, chatID string) (int64, error) {
    if tx == nil {
        tx = mr.db
    }
    res := tx.WithContext(ctx).
        Where("chat_id = ?", chatID).
        Delete(&types.Message{})
    if res.Error != nil {
        mr.log.Error("failed to delete chat", "chatID", chatID, "error", res.Error)
        return 0, wrapErr("delete chat", res.Error)
    }
    mr.log.Debug("chat deleted", "chatID", chatID, "rows", res.RowsAffected)
    return res.RowsAffected, nil
}

// The first question of each chat joined with the row holding its newest
// timestamp. (chat_id, timestamp) is unique so each join matches one row.
const foldersSQL = `
SELECT f.chat_id AS chat_id, f.question AS question, l.timestamp AS last_message
FROM messages f
JOIN (
  SELECT chat_id, MIN(timestamp) AS first_ts, MAX(timestamp) AS last_ts
  FROM messages
  GROUP BY chat_id
) g ON f.chat_id = g.chat_id AND f.timestamp = g.first_ts
JOIN messages l ON l.chat_id = g.chat_id AND l.timestamp = g.last_ts
ORDER BY l.timestamp DESC, f.chat_id ASC`

func (mr *messageRepo) GetFolders(ctx context.Context, tx *gorm.DB) ([]*types.ChatFolder, error) {
    if tx == nil {
        tx = mr.db
    }
    folders := []*types.ChatFolder{}
    if err := tx.WithContext(ctx).Raw(foldersSQL).Scan(&folders).Error; err != nil {
        mr.log.Error("failed to get chat folders", "error", err)
        return nil, wrapErr("get chat folders", err)
    }
    return folders, nil
}

// Search is a case-sensitive substring match on question or answer. instr is
// used instead of LIKE because SQLite's LIKE ignores ASCII case.
func (mr *messageRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    msgs := []*types.Message{}
    if limit <= 0 {
        return msgs, nil
    }
    if err := tx.WithContext(ctx).
        Where("instr(question, ?) > 0 OR instr(answer, ?) > 0", query, query).
        Order("timestamp DESC").
        Order("id DESC").
        Limit(limit).
        Find(&msgs).Error; err != nil {
        mr.log.Error("failed to search messages", "query", query, "error", err)
        return nil, wrapErr("search messages", err)
    }
    return msgs, nil
}
