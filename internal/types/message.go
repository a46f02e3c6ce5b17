package types

import (
  "time"
)

const DefaultChatID = "default"

// Message is one question/answer exchange. Rows are written once and only
// removed together with the rest of their chat.
type Message struct {
  ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
  Question    string          `gorm:"column:question;type:text;not null;index:idx_messages_question" json:"question"`
  Answer      string          `gorm:"column:answer;type:text;not null" json:"answer"`
  Timestamp   time.Time       `gorm:"column:timestamp;not null;index:idx_messages_timestamp;uniqueIndex:idx_messages_chat_id_timestamp,priority:2" json:"timestamp"`
  ChatID      string          `gorm:"column:chat_id;type:varchar(255);not null;default:default;index:idx_messages_chat_id;uniqueIndex:idx_messages_chat_id_timestamp,priority:1" json:"chat_id"`
  CreatedAt   time.Time       `gorm:"column:created_at;not null" json:"created_at"`
  UpdatedAt   time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Message) TableName() string {
  return "messages"
}
