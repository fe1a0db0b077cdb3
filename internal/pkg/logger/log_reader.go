package logger

import (
	"bufio"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrLogNotFound = errors.New("log entry not found")

type LogEntry struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// LogQuery filters GetLogs. Empty Level/Module match everything.
type LogQuery struct {
	Level  string
	Module string
	Limit  int
	Offset int
}

// GetLogs returns entries from the active log file, newest first.
// Rotated (gzipped) backups are not read.
func (l *ZapLogger) GetLogs(q LogQuery) ([]LogEntry, error) {
	if l.filePath == "" {
		return []LogEntry{}, nil
	}

	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if q.Level != "" && entry.Level != q.Level {
			continue
		}
		if q.Module != "" && entry.Module != q.Module {
			continue
		}
		if entry.Id == "" {
			entry.Id = fmt.Sprintf("%x", sha1.Sum(line))[:12]
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	start := q.Offset
	if start >= len(entries) {
		return []LogEntry{}, nil
	}
	end := len(entries)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return entries[start:end], nil
}

func (l *ZapLogger) GetLogById(id string) (*LogEntry, error) {
	logs, err := l.GetLogs(LogQuery{})
	if err != nil {
		return nil, err
	}
	for i := range logs {
		if logs[i].Id == id {
			return &logs[i], nil
		}
	}
	return nil, ErrLogNotFound
}
