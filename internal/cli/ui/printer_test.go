package ui

import (
	"bytes"
	"testing"

	"coreader-client/internal/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestPrinterStreamsDeltas(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	for _, content := range []string{"", "The", "The answer", "The answer is 42."} {
		p.Message(entity.ChatMessage{Id: "m1", Role: entity.ChatRoleAssistant, Content: content})
	}

	assert.Equal(t, "assistant> The answer is 42.", buf.String())
}

func TestPrinterReprintsReplacedContent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Message(entity.ChatMessage{Id: "m1", Role: entity.ChatRoleAssistant, Content: "partial"})
	p.Message(entity.ChatMessage{Id: "m1", Role: entity.ChatRoleAssistant, Content: "Error: boom"})

	assert.Equal(t, "assistant> partial\nassistant> Error: boom", buf.String())
}

func TestPrinterSkipsUserMessages(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Message(entity.ChatMessage{Id: "u1", Role: entity.ChatRoleUser, Content: "hi"})
	assert.Empty(t, buf.String())
}

func TestPrinterFiles(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Files(nil)
	p.Files([]entity.UploadedFile{{Id: "a", Name: "x.pdf", IsActive: true}})

	assert.Contains(t, buf.String(), "No uploaded files.")
	assert.Contains(t, buf.String(), "active")
	assert.Contains(t, buf.String(), "x.pdf")
}

func TestPrinterNotify(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Notify(entity.Notification{Level: entity.NotificationWarning, Message: "careful"})
	assert.Equal(t, "[warning] careful\n", buf.String())
}

func TestPrinterHoldsNotificationsUntilAnswerEnds(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Message(entity.ChatMessage{Id: "m1", Role: entity.ChatRoleAssistant, Content: ""})
	p.Notify(entity.Notification{Level: entity.NotificationSuccess, Message: "Uploaded budget.txt."})
	p.Message(entity.ChatMessage{Id: "m1", Role: entity.ChatRoleAssistant, Content: "From budget.txt: 40k."})
	p.EndAnswer()
	p.Notify(entity.Notification{Level: entity.NotificationInfo, Message: "after"})

	assert.Equal(t, "assistant> From budget.txt: 40k.\n[success] Uploaded budget.txt.\n[info] after\n", buf.String())
}
