package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"coreader-client/internal/entity"
	"coreader-client/internal/pkg/logger"

	"github.com/fatih/color"
)

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen, color.Bold)
	citationColor  = color.New(color.FgHiBlack)
	activeColor    = color.New(color.FgGreen)
	inactiveColor  = color.New(color.FgHiBlack)

	levelColors = map[entity.NotificationLevel]*color.Color{
		entity.NotificationSuccess: color.New(color.FgGreen),
		entity.NotificationInfo:    color.New(color.FgCyan),
		entity.NotificationWarning: color.New(color.FgYellow),
		entity.NotificationError:   color.New(color.FgRed),
	}
)

// Printer renders session state to a terminal. It is safe for concurrent use;
// streamed answers are printed as deltas.
type Printer struct {
	out io.Writer
	mu  sync.Mutex

	// printed tracks how much of each assistant message is on screen.
	printed map[string]string

	// Notifications wait while an answer line is open.
	open   bool
	queued []entity.Notification
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, printed: make(map[string]string)}
}

// Message is a change hook: it prints new text for assistant messages and
// reprints a message whose content was replaced.
func (p *Printer) Message(m entity.ChatMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m.Role == entity.ChatRoleUser {
		return
	}

	prev, seen := p.printed[m.Id]
	if !seen {
		assistantColor.Fprint(p.out, "assistant> ")
	}

	switch {
	case strings.HasPrefix(m.Content, prev):
		fmt.Fprint(p.out, m.Content[len(prev):])
	default:
		fmt.Fprint(p.out, "\n")
		assistantColor.Fprint(p.out, "assistant> ")
		fmt.Fprint(p.out, m.Content)
	}
	p.printed[m.Id] = m.Content
	p.open = true

	if len(m.Citations) > 0 {
		fmt.Fprint(p.out, "\n")
		for i, c := range m.Citations {
			citationColor.Fprintf(p.out, "  [%d] %s: %s\n", i+1, c.Filename, truncate(c.Content, 80))
		}
	}
}

// EndAnswer terminates the current answer line and prints any notifications
// that arrived while it was open.
func (p *Printer) EndAnswer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)

	p.open = false
	for _, n := range p.queued {
		p.notifyLocked(n)
	}
	p.queued = nil
}

// Notify prints one notification, or holds it until EndAnswer if an answer is
// still streaming.
func (p *Printer) Notify(n entity.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.open {
		p.queued = append(p.queued, n)
		return
	}
	p.notifyLocked(n)
}

func (p *Printer) notifyLocked(n entity.Notification) {
	c, ok := levelColors[n.Level]
	if !ok {
		c = levelColors[entity.NotificationInfo]
	}
	c.Fprintf(p.out, "[%s] ", n.Level)
	fmt.Fprintln(p.out, n.Message)
}

func (p *Printer) Files(files []entity.UploadedFile) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(files) == 0 {
		fmt.Fprintln(p.out, "No uploaded files.")
		return
	}
	for _, f := range files {
		status := inactiveColor
		if f.IsActive {
			status = activeColor
		}
		fmt.Fprintf(p.out, "%-36s  ", f.Id)
		status.Fprintf(p.out, "%-8s", f.StatusLabel())
		fmt.Fprintf(p.out, "  %s\n", f.Name)
	}
}

func (p *Printer) Prompt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	userColor.Fprint(p.out, "you> ")
}

func (p *Printer) Line(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	levelColors[entity.NotificationError].Fprintf(p.out, "error: %v\n", err)
}

func (p *Printer) LogEntries(entries []logger.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range entries {
		c := levelColors[entity.NotificationInfo]
		switch e.Level {
		case "warn":
			c = levelColors[entity.NotificationWarning]
		case "error":
			c = levelColors[entity.NotificationError]
		case "debug":
			c = inactiveColor
		}
		fmt.Fprintf(p.out, "%s %s ", e.Id, e.Timestamp)
		c.Fprintf(p.out, "%-5s", e.Level)
		fmt.Fprintf(p.out, " [%s] %s\n", e.Module, e.Message)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
