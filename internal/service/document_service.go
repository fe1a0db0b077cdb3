package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"coreader-client/internal/dto"
	"coreader-client/internal/model"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/repository/contract"
	"coreader-client/pkg/search"
	"coreader-client/pkg/utils"

	"github.com/google/uuid"
)

const (
	documentChunkSize    = 1000
	documentChunkOverlap = 200
	answerMaxExcerpts    = 2
)

var (
	ErrUnsupportedContent = errors.New("content is not valid UTF-8")
	ErrEmptyContent       = errors.New("content is empty or whitespace only")
)

// Answer is what the dev backend streams back for one query.
type Answer struct {
	Text      string
	Citations []dto.CitationDTO
}

// IDocumentService is the dev backend's side of the document QA API.
type IDocumentService interface {
	List(ctx context.Context) ([]dto.UploadedFileDTO, error)
	Upload(ctx context.Context, name string, content []byte) (*dto.UploadFileResponse, error)
	SetActive(ctx context.Context, id string, isActive bool) error
	Delete(ctx context.Context, id string) error
	ClearMemory(ctx context.Context) error
	Answer(ctx context.Context, query string) (*Answer, error)
}

type documentService struct {
	documents     contract.DocumentRepository
	conversations contract.ConversationRepository
	logger        logger.ILogger
}

func NewDocumentService(documents contract.DocumentRepository, conversations contract.ConversationRepository, log logger.ILogger) IDocumentService {
	return &documentService{
		documents:     documents,
		conversations: conversations,
		logger:        log,
	}
}

func (s *documentService) List(ctx context.Context) ([]dto.UploadedFileDTO, error) {
	files, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UploadedFileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, dto.UploadedFileDTO{Id: f.Id, Name: f.Name, IsActive: f.IsActive})
	}
	return out, nil
}

func (s *documentService) Upload(ctx context.Context, name string, content []byte) (*dto.UploadFileResponse, error) {
	// 1. Validate content
	if !utf8.Valid(content) {
		return nil, ErrUnsupportedContent
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	// 2. Chunk and store; a same-name document is replaced
	var replacedId string
	if prev, err := s.documents.FindByName(ctx, name); err == nil {
		replacedId = prev.Id
	}

	file := &model.StoredFile{
		Id:         uuid.NewString(),
		Name:       name,
		Content:    text,
		Chunks:     utils.SplitText(text, documentChunkSize, documentChunkOverlap),
		IsActive:   true,
		UploadedAt: time.Now(),
	}
	if err := s.documents.Save(ctx, file); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.logger.Info("DocumentService", "Document stored", map[string]interface{}{
		"file_id": file.Id, "name": file.Name, "chunks": len(file.Chunks), "replaced_id": replacedId,
	})
	return &dto.UploadFileResponse{Status: 201, FileId: file.Id, Filename: file.Name}, nil
}

func (s *documentService) SetActive(ctx context.Context, id string, isActive bool) error {
	if _, err := s.documents.SetActive(ctx, id, isActive); err != nil {
		return err
	}

	s.logger.Info("DocumentService", "Document status changed", map[string]interface{}{"file_id": id, "is_active": isActive})
	return nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("DocumentService", "Document deleted", map[string]interface{}{"file_id": id})
	return nil
}

func (s *documentService) ClearMemory(ctx context.Context) error {
	if err := s.conversations.Clear(ctx); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	s.logger.Info("DocumentService", "Conversation memory cleared", nil)
	return nil
}

type scoredExcerpt struct {
	file  *model.StoredFile
	chunk string
	score int
}

// Answer picks the best matching excerpts from active documents. It is a
// keyword match, not a language model.
func (s *documentService) Answer(ctx context.Context, query string) (*Answer, error) {
	filters := search.ParseQuery(query)

	files, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Collect candidate chunks
	var (
		candidates []scoredExcerpt
		active     int
	)
	for _, f := range files {
		if !f.IsActive {
			continue
		}
		if filters.FileName != "" && strings.ToLower(f.Name) != filters.FileName {
			continue
		}
		active++
		for _, chunk := range f.Chunks {
			if score := search.Score(chunk, filters.Terms); score > 0 {
				candidates = append(candidates, scoredExcerpt{file: f, chunk: chunk, score: score})
			}
		}
	}

	// 2. Compose
	answer := &Answer{}
	switch {
	case active == 0:
		answer.Text = "There are no active documents to answer from."
	case len(candidates) == 0:
		answer.Text = "I could not find anything about that in the active documents."
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
		if len(candidates) > answerMaxExcerpts {
			candidates = candidates[:answerMaxExcerpts]
		}

		parts := make([]string, 0, len(candidates))
		for _, c := range candidates {
			excerpt := strings.TrimSpace(c.chunk)
			parts = append(parts, fmt.Sprintf("From %s: %s", c.file.Name, excerpt))
			answer.Citations = append(answer.Citations, dto.CitationDTO{
				Content:  excerpt,
				Filename: c.file.Name,
				FileId:   c.file.Id,
			})
		}
		answer.Text = strings.Join(parts, "\n\n")
	}

	// 3. Remember the turn
	if err := s.conversations.Append(ctx, model.ConversationTurn{
		Query:      query,
		Answer:     answer.Text,
		AnsweredAt: time.Now(),
	}); err != nil {
		s.logger.Warn("DocumentService", "Failed to record conversation turn", map[string]interface{}{"error": err})
	}

	s.logger.Debug("DocumentService", "Answer composed", map[string]interface{}{
		"terms": len(filters.Terms), "excerpts": len(answer.Citations),
	})
	return answer, nil
}
