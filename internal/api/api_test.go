package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daito-dot/gemini-chatbot/internal/chat"
	"github.com/daito-dot/gemini-chatbot/internal/loader"
	pkgapi "github.com/daito-dot/gemini-chatbot/pkg/api"
)

type echoCompleter struct {
	calls int
}

func (c *echoCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return prompt, nil
}

func setupRouter(t *testing.T) (chi.Router, *echoCompleter) {
	t.Helper()

	completer := &echoCompleter{}
	service := NewChatService(loader.NewDocumentLoader(), chat.NewChatSession(completer))

	router := chi.NewRouter()
	service.AddRoutes(router)
	return router, completer
}

func multipartUpload(t *testing.T, files map[string][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func listDocuments(t *testing.T, router chi.Router) []string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/documents/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pkgapi.ListDocumentsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Documents
}

func TestUploadAndChat(t *testing.T) {
	router, completer := setupRouter(t)

	req := multipartUpload(t, map[string][]byte{"greeting.txt": []byte("hello document world")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var uploadResp pkgapi.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploadResp))
	require.Len(t, uploadResp.Results, 1)
	assert.Empty(t, uploadResp.Results[0].Error)

	assert.Equal(t, []string{"greeting.txt"}, listDocuments(t, router))

	chatBody, _ := json.Marshal(pkgapi.ChatRequest{Message: "what does it say?"})
	req = httptest.NewRequest(http.MethodPost, "/chat/", bytes.NewReader(chatBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var chatResp pkgapi.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chatResp))

	// The stub echoes the prompt, so the reply exposes the assembled context.
	assert.Contains(t, chatResp.Reply, "greeting.txt")
	assert.Contains(t, chatResp.Reply, "hello document world")
	assert.Contains(t, chatResp.Reply, "what does it say?")
	assert.Equal(t, 1, completer.calls)
}

func TestUploadFailureDoesNotBlockOthers(t *testing.T) {
	router, _ := setupRouter(t)

	req := multipartUpload(t, map[string][]byte{
		"good.txt":  []byte("fine"),
		"image.png": []byte("binary"),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var uploadResp pkgapi.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploadResp))
	require.Len(t, uploadResp.Results, 2)

	byName := make(map[string]pkgapi.UploadResult)
	for _, result := range uploadResp.Results {
		byName[result.Name] = result
	}
	assert.Empty(t, byName["good.txt"].Error)
	assert.NotEmpty(t, byName["image.png"].Error)

	assert.Equal(t, []string{"good.txt"}, listDocuments(t, router))
}

func TestChatWithoutDocuments(t *testing.T) {
	router, completer := setupRouter(t)

	chatBody, _ := json.Marshal(pkgapi.ChatRequest{Message: "anyone there?"})
	req := httptest.NewRequest(http.MethodPost, "/chat/", bytes.NewReader(chatBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var chatResp pkgapi.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chatResp))
	assert.Equal(t, chat.NoDocumentsMessage(), chatResp.Reply)
	assert.Equal(t, 0, completer.calls)
}

func TestAddURLDocument(t *testing.T) {
	router, _ := setupRouter(t)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<nav>menu item</nav><p>interesting paragraph</p>"))
	}))
	defer page.Close()

	body, _ := json.Marshal(pkgapi.AddURLRequest{URL: page.URL})
	req := httptest.NewRequest(http.MethodPost, "/documents/url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var urlResp pkgapi.AddURLResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&urlResp))
	assert.Equal(t, []string{urlResp.Key}, listDocuments(t, router))
}

func TestAddURLFetchFailure(t *testing.T) {
	router, _ := setupRouter(t)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer page.Close()

	body, _ := json.Marshal(pkgapi.AddURLRequest{URL: page.URL})
	req := httptest.NewRequest(http.MethodPost, "/documents/url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, listDocuments(t, router))
}

func TestRemoveAndClearDocuments(t *testing.T) {
	router, _ := setupRouter(t)

	req := multipartUpload(t, map[string][]byte{
		"a.txt": []byte("a"),
		"b.txt": []byte("b"),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listDocuments(t, router), 2)

	req = httptest.NewRequest(http.MethodDelete, "/documents/"+url.PathEscape("a.txt"), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"b.txt"}, listDocuments(t, router))

	req = httptest.NewRequest(http.MethodDelete, "/documents/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, listDocuments(t, router))
}

func TestChatHistory(t *testing.T) {
	router, _ := setupRouter(t)

	req := multipartUpload(t, map[string][]byte{"doc.txt": []byte("content")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, msg := range []string{"first question", "second question"} {
		chatBody, _ := json.Marshal(pkgapi.ChatRequest{Message: msg})
		req = httptest.NewRequest(http.MethodPost, "/chat/", bytes.NewReader(chatBody))
		req.Header.Set("Content-Type", "application/json")
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []pkgapi.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history, 4)
	assert.Equal(t, pkgapi.RoleUser, history[0].Role)
	assert.Equal(t, "first question", history[0].Content)
	assert.Equal(t, pkgapi.RoleAssistant, history[1].Role)
	assert.Equal(t, pkgapi.RoleUser, history[2].Role)
	assert.Equal(t, "second question", history[2].Content)

	// limit keeps the most recent turns
	req = httptest.NewRequest(http.MethodGet, "/chat/history?limit=2", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.Equal(t, "second question", history[0].Content)
}
