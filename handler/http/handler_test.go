package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	httpHdlr "gemrag/handler/http"
	"gemrag/src/core/filesearch"
	"gemrag/src/fsutil"
)

type fakeService struct {
	uploadPath    string
	uploadName    string
	uploadContent string
	uploadErr     error
	storeID       string

	question  string
	storeName string
	answer    *filesearch.Answer
	answerErr error
}

func (f *fakeService) CreateStore(ctx context.Context, displayName string) (string, error) {
	return "fileSearchStores/created", nil
}

func (f *fakeService) UploadFile(ctx context.Context, filePath, fileName string) (string, error) {
	f.uploadPath = filePath
	f.uploadName = fileName
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	f.uploadContent = string(data)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.storeID, nil
}

func (f *fakeService) Answer(ctx context.Context, question, storeName string) (*filesearch.Answer, error) {
	f.question = question
	f.storeName = storeName
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	return f.answer, nil
}

func (f *fakeService) ListStores(ctx context.Context) ([]*genai.FileSearchStore, error) {
	return nil, nil
}

func newRouter(t *testing.T, svc filesearch.Service) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	staging, err := fsutil.NewStaging(root, fsutil.NewLocalFileStore())
	require.NoError(t, err)

	r := gin.New()
	r.Use(httpHdlr.RequestID())
	httpHdlr.NewHandler(svc, staging).RegisterRoutes(r)
	return r, root
}

func multipartBody(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range extra {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCheckHealth(t *testing.T) {
	r, _ := newRouter(t, &fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(httpHdlr.HeaderXRequestID))
}

func TestRequestIDIsReused(t *testing.T) {
	r, _ := newRouter(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httpHdlr.HeaderXRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(httpHdlr.HeaderXRequestID))
}

func TestUploadFile(t *testing.T) {
	svc := &fakeService{storeID: "fileSearchStores/notes-txt-123"}
	r, root := newRouter(t, svc)

	body, contentType := multipartBody(t, "file", "Notes.TXT", "0123456789", nil)
	req := httptest.NewRequest(http.MethodPost, "/rag/upload-files?store_name=ignored", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "Notes.TXT", resp["file_name"])
	assert.Equal(t, "fileSearchStores/notes-txt-123", resp["store_id"])

	assert.Equal(t, "Notes.TXT", svc.uploadName)
	assert.Equal(t, "0123456789", svc.uploadContent)
	assert.True(t, strings.HasPrefix(svc.uploadPath, root))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging file must be removed")
}

func TestUploadFileServiceError(t *testing.T) {
	svc := &fakeService{uploadErr: errors.New("gemini: 500 INTERNAL: boom")}
	r, root := newRouter(t, svc)

	body, contentType := multipartBody(t, "file", "a.txt", "hello", map[string]string{"store_name": "x"})
	req := httptest.NewRequest(http.MethodPost, "/rag/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"gemini: 500 INTERNAL: boom"}`, w.Body.String())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging file must be removed on failure too")
}

func TestUploadFileMissingFile(t *testing.T) {
	svc := &fakeService{}
	r, _ := newRouter(t, svc)

	body, contentType := multipartBody(t, "", "", "", map[string]string{"store_name": "x"})
	req := httptest.NewRequest(http.MethodPost, "/rag/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
	assert.Empty(t, svc.uploadName)
}

func TestChat(t *testing.T) {
	svc := &fakeService{answer: &filesearch.Answer{
		Text: genai.Ptr("X is a letter."),
		Citations: []*genai.GroundingChunk{
			{RetrievedContext: &genai.GroundingChunkRetrievedContext{Title: "Notes.TXT", Text: "X is a letter"}},
			{Web: &genai.GroundingChunkWeb{URI: "https://example.com/x", Title: "X"}},
		},
	}}
	r, _ := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/rag/chat", strings.NewReader(`{"query":"What is X?","store_id":"stores/abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`["X is a letter.",[
			{"retrievedContext":{"title":"Notes.TXT","text":"X is a letter"}},
			{"web":{"uri":"https://example.com/x","title":"X"}}
		]]`,
		w.Body.String())
	assert.Equal(t, "What is X?", svc.question)
	assert.Equal(t, "stores/abc", svc.storeName)
}

func TestChatNoMatchingContent(t *testing.T) {
	svc := &fakeService{answer: &filesearch.Answer{
		Text:      genai.Ptr("The documents hold no information about X."),
		Citations: []*genai.GroundingChunk{},
	}}
	r, _ := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/rag/chat", strings.NewReader(`{"query":"What is X?","store_id":"stores/abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.JSONEq(t, `"The documents hold no information about X."`, string(resp[0]))
	assert.JSONEq(t, `[]`, string(resp[1]))
}

func TestChatInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing store id", body: `{"query":"q"}`},
		{name: "missing query", body: `{"store_id":"stores/abc"}`},
		{name: "wrong type", body: `{"query":1,"store_id":"stores/abc"}`},
		{name: "not json", body: `query=q`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			r, _ := newRouter(t, svc)

			req := httptest.NewRequest(http.MethodPost, "/rag/chat", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Empty(t, svc.question)
		})
	}
}

func TestChatEmptyStringsPassTypeCheck(t *testing.T) {
	svc := &fakeService{answer: &filesearch.Answer{Text: genai.Ptr(""), Citations: []*genai.GroundingChunk{}}}
	r, _ := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/rag/chat", strings.NewReader(`{"query":"","store_id":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["",[]]`, w.Body.String())
}

func TestChatWithoutAnswerTextSendsNull(t *testing.T) {
	svc := &fakeService{answer: &filesearch.Answer{Citations: []*genai.GroundingChunk{}}}
	r, _ := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/rag/chat", strings.NewReader(`{"query":"q","store_id":"stores/abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[null,[]]`, w.Body.String())
}

func TestChatServiceErrorIsNotTranslated(t *testing.T) {
	svc := &fakeService{answerErr: genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}}
	r, _ := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/rag/chat", strings.NewReader(`{"query":"q","store_id":"stores/abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", w.Body.String())
}
