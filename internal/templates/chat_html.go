package templates

import (
	"bytes"
	"html/template"
	"time"

	"github.com/slotter-org/slotter-chat/internal/types"
)

const (
	FolderPreviewLen   = 30
	QuestionPreviewLen = 50
	AnswerPreviewLen   = 100

	folderDateLayout  = "2006-01-02"
	messageTimeLayout = "2006-01-02 | 03:04 PM"
)

// ExamplePrompts are offered as one-click questions above the input box.
var ExamplePrompts = []string{
	"Tell me about artificial intelligence",
	"How does machine learning work?",
	"What are neural networks?",
}

type MessageView struct {
	ID              uint
	Question        string
	Answer          string
	QuestionPreview string
	AnswerPreview   string
	Time            string
}

type FolderView struct {
	ChatID   string
	Preview  string
	Date     string
	Current  bool
	Messages []MessageView
}

type ChatPageData struct {
	ChatID      string
	Question    string
	Notice      string
	Examples    []string
	Folders     []FolderView
	CurrentChat []MessageView
}

// Truncate cuts s to n runes and appends "..." when anything was removed.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func FormatMessageTime(t time.Time) string {
	return t.Local().Format(messageTimeLayout)
}

func FormatFolderDate(t time.Time) string {
	return t.Local().Format(folderDateLayout)
}

func NewMessageView(m *types.Message) MessageView {
	return MessageView{
		ID:              m.ID,
		Question:        m.Question,
		Answer:          m.Answer,
		QuestionPreview: Truncate(m.Question, QuestionPreviewLen),
		AnswerPreview:   Truncate(m.Answer, AnswerPreviewLen),
		Time:            FormatMessageTime(m.Timestamp),
	}
}

func NewMessageViews(msgs []*types.Message) []MessageView {
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, NewMessageView(m))
	}
	return views
}

func NewFolderView(f *types.ChatFolder, currentChatID string, msgs []*types.Message) FolderView {
	return FolderView{
		ChatID:   f.ChatID,
		Preview:  Truncate(f.Question, FolderPreviewLen),
		Date:     FormatFolderDate(f.LastMessage),
		Current:  f.ChatID == currentChatID,
		Messages: NewMessageViews(msgs),
	}
}

const chatHTML = `
<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8"/>
  <title>AI Chat Assistant</title>
  <style>
    body { margin: 0; font-family: Arial, sans-serif; background-color: #f5f5f5; color: #333; display: flex; }
    .sidebar { width: 320px; min-height: 100vh; background-color: #ffffff; border-right: 1px solid #ddd; padding: 16px; box-sizing: border-box; }
    .main { flex: 1; padding: 24px 40px; }
    .folder summary { cursor: pointer; padding: 6px 0; }
    .folder.current summary { font-weight: bold; }
    .msg { border-bottom: 1px solid #eee; padding: 8px 0; }
    .time { color: #888; font-style: italic; font-size: 0.85em; }
    .examples button, .actions button { margin: 4px 4px 4px 0; padding: 8px 12px; }
    .wide { width: 100%; }
    .notice { background: #fff3cd; padding: 8px 12px; border-radius: 4px; }
    .copy { float: right; border: none; background: none; cursor: pointer; }
  </style>
</head>
<body>
  <div class="sidebar">
    <h2>Chat History</h2>
    <form method="POST" action="/chat/new"><button class="wide" type="submit">New Chat</button></form>
    <h3>Recent Chats</h3>
    {{if not .Folders}}
      <p>No chat history yet. Start a new conversation!</p>
    {{end}}
    {{range .Folders}}
      <details class="folder{{if .Current}} current{{end}}" data-chat-id="{{.ChatID}}">
        <summary>{{.Preview}} ({{.Date}})</summary>
        {{range .Messages}}
          <div class="msg">
            <div><b>Q:</b> {{.QuestionPreview}}</div>
            <div><button class="copy" type="button" data-copy="{{.Answer}}">copy</button><b>A:</b> {{.AnswerPreview}}</div>
            <div class="time">{{.Time}}</div>
          </div>
        {{end}}
      </details>
    {{end}}
  </div>

  <div class="main">
    <h1>AI Powered Chat Assistant</h1>
    <h3>Simple Q&amp;A Assistant</h3>
    {{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}

    <p>Try these examples:</p>
    <div class="examples">
      {{range .Examples}}
        <form method="GET" action="/" style="display:inline"><input type="hidden" name="q" value="{{.}}"/><button type="submit">{{.}}</button></form>
      {{end}}
    </div>

    <form method="POST" action="/chat/send">
      <p><input class="wide" type="text" name="question" placeholder="Type your message here" value="{{.Question}}" autofocus/></p>
      <div class="actions">
        <button type="submit">Send</button>
        <button type="submit" formaction="/chat/clear">Clear Chat</button>
      </div>
    </form>

    <h3>Current Chat</h3>
    {{range .CurrentChat}}
      <div class="msg">
        <p><b>You:</b> {{.Question}}</p>
        <p><button class="copy" type="button" data-copy="{{.Answer}}">copy</button><b>Assistant:</b> {{.Answer}}</p>
        <div class="time">{{.Time}}</div>
      </div>
    {{end}}
  </div>

  <script>
    document.addEventListener("click", function (e) {
      var text = e.target.getAttribute && e.target.getAttribute("data-copy");
      if (text !== null && navigator.clipboard) {
        navigator.clipboard.writeText(text).then(function () { e.target.textContent = "copied!"; });
      }
    });
    (function () {
      var proto = location.protocol === "https:" ? "wss://" : "ws://";
      var ws = new WebSocket(proto + location.host + "/ws");
      ws.onopen = function () {
        ws.send(JSON.stringify({ action: "subscribe", channel: "chats" }));
      };
      ws.onmessage = function () {
        var input = document.querySelector("input[name=question]");
        if (!input || input.value === "") { location.reload(); }
      };
    })();
  </script>
</body>
</html>
`

var chatTemplate = template.Must(template.New("chat").Parse(chatHTML))

func RenderChatHTML(data ChatPageData) (string, error) {
	var buf bytes.Buffer
	if err := chatTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
