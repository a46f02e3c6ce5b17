package types

import (
  "time"
)

// ChatFolder summarises one chat for the history sidebar. Question is the
// chat's first question by timestamp; LastMessage is its newest timestamp.
type ChatFolder struct {
  ChatID        string      `gorm:"column:chat_id" json:"chat_id"`
  Question      string      `gorm:"column:question" json:"question"`
  LastMessage   time.Time   `gorm:"column:last_message" json:"last_message"`
}
