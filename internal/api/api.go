package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daito-dot/gemini-chatbot/internal/chat"
	"github.com/daito-dot/gemini-chatbot/internal/loader"
	"github.com/daito-dot/gemini-chatbot/pkg/api"
)

const maxUploadBytes = 32 << 20

// maxURLKeyLength bounds the display key synthesized for URL documents.
const maxURLKeyLength = 50

// ChatService exposes one chat session and its flat transcript over HTTP. It
// owns the session and transcript outright; the lock serializes access since
// the session itself is single threaded.
type ChatService struct {
	mu         sync.Mutex
	loader     *loader.DocumentLoader
	session    *chat.ChatSession
	transcript []api.Message
}

func NewChatService(ldr *loader.DocumentLoader, session *chat.ChatSession) *ChatService {
	return &ChatService{
		loader:  ldr,
		session: session,
	}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListDocuments))
		r.Post("/", RestHandler(s.UploadDocuments))
		r.Post("/url", RestHandler(s.AddURL))
		r.Delete("/", RestHandler(s.ClearDocuments))
		r.Delete("/{key}", RestHandler(s.RemoveDocument))
	})
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", RestHandler(s.SendMessage))
		r.Get("/history", RestHandler(s.GetHistory))
	})
}

// UploadDocuments accepts a multipart form of files, extracts each one, and
// registers them on the session. A failed file is reported in its result
// entry and does not block the others.
func (s *ChatService) UploadDocuments(r *http.Request) (any, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse multipart form: %v", err)
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, CodedErrorf(http.StatusBadRequest, "no files provided")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]api.UploadResult, 0, len(files))
	for _, header := range files {
		result := api.UploadResult{Name: header.Filename}

		content, err := s.extractUpload(header)
		if err != nil {
			result.Error = err.Error()
		} else {
			s.session.AddDocument(header.Filename, content)
		}

		results = append(results, result)
	}

	return api.UploadResponse{Results: results}, nil
}

func (s *ChatService) extractUpload(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	return s.loader.Load(data, header.Filename)
}

// AddURL fetches a web page and registers its text under a key derived from
// the URL, truncated for display.
func (s *ChatService) AddURL(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AddURLRequest](r)
	if err != nil {
		return nil, err
	}

	content, err := s.loader.Load(req.URL, "")
	if err != nil {
		return nil, loaderError(err)
	}

	key := req.URL
	if len(key) > maxURLKeyLength {
		key = key[:maxURLKeyLength] + "..."
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.AddDocument(key, content)

	return api.AddURLResponse{Key: key}, nil
}

func (s *ChatService) ListDocuments(r *http.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return api.ListDocumentsResponse{Documents: s.session.ListDocuments()}, nil
}

func (s *ChatService) RemoveDocument(r *http.Request) (any, error) {
	key, err := url.QueryUnescape(chi.URLParam(r, "key"))
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "invalid document key: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.RemoveDocument(key)

	return nil, nil
}

func (s *ChatService) ClearDocuments(r *http.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.ClearDocuments()

	return nil, nil
}

// SendMessage answers a query against the session's documents and appends
// both turns to the transcript. Generate never fails, so neither does this
// endpoint once the request parses.
func (s *ChatService) SendMessage(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ChatRequest](r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reply := s.session.Generate(r.Context(), req.Message)

	s.transcript = append(s.transcript,
		newMessage(api.RoleUser, req.Message),
		newMessage(api.RoleAssistant, reply),
	)

	return api.ChatResponse{Reply: reply}, nil
}

func (s *ChatService) GetHistory(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.HistoryParams](r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.transcript
	if params.Limit > 0 && params.Limit < len(messages) {
		messages = messages[len(messages)-params.Limit:]
	}

	history := make([]api.Message, len(messages))
	copy(history, messages)

	return history, nil
}

func newMessage(role, content string) api.Message {
	return api.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
}

// loaderError maps loader failures onto HTTP status codes.
func loaderError(err error) error {
	var fetchErr *loader.FetchError
	var extractErr *loader.ExtractionError

	switch {
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return CodedError(http.StatusUnsupportedMediaType, err)
	case errors.Is(err, loader.ErrUnsupportedSourceType):
		return CodedError(http.StatusBadRequest, err)
	case errors.As(err, &fetchErr):
		return CodedError(http.StatusBadGateway, err)
	case errors.As(err, &extractErr):
		return CodedError(http.StatusUnprocessableEntity, err)
	default:
		return err
	}
}
