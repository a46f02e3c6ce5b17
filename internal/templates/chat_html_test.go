package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotter-org/slotter-chat/internal/types"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 30))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "ääb...", Truncate("ääbcc", 3))
	assert.Equal(t, "keep", Truncate("keep", 0))
}

func TestNewFolderView(t *testing.T) {
	f := &types.ChatFolder{
		ChatID:      "c1",
		Question:    "Tell me about artificial intelligence please",
		LastMessage: time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local),
	}
	view := NewFolderView(f, "c1", nil)

	assert.Equal(t, "Tell me about artificial intel...", view.Preview)
	assert.Equal(t, "2025-06-01", view.Date)
	assert.True(t, view.Current)
	assert.Empty(t, view.Messages)
}

func TestNewMessageView(t *testing.T) {
	m := &types.Message{
		ID:        7,
		Question:  "q",
		Answer:    "a",
		Timestamp: time.Date(2025, 6, 1, 15, 4, 0, 0, time.Local),
	}
	view := NewMessageView(m)
	assert.Equal(t, uint(7), view.ID)
	assert.Equal(t, "2025-06-01 | 03:04 PM", view.Time)
}

func TestRenderChatHTML(t *testing.T) {
	html, err := RenderChatHTML(ChatPageData{
		ChatID:   "c1",
		Examples: ExamplePrompts,
		Folders: []FolderView{{
			ChatID:   "c1",
			Preview:  "What is <AI>?",
			Date:     "2025-06-01",
			Current:  true,
			Messages: []MessageView{{Question: "What is <AI>?", QuestionPreview: "What is <AI>?", Answer: "AI is..."}},
		}},
		CurrentChat: []MessageView{{Question: "What is <AI>?", Answer: "AI is..."}},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "What is &lt;AI&gt;?")
	assert.NotContains(t, html, "What is <AI>?")
	assert.Contains(t, html, "How does machine learning work?")
	assert.Contains(t, html, `class="folder current"`)
	assert.NotContains(t, html, "No chat history yet")
}

func TestRenderChatHTML_Empty(t *testing.T) {
	html, err := RenderChatHTML(ChatPageData{})
	require.NoError(t, err)
	assert.Contains(t, html, "No chat history yet. Start a new conversation!")
}
