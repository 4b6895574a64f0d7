package filesearch

import (
	"context"
	"errors"
	"io"

	"google.golang.org/genai"
)

var (
	ErrEmptyStoreName = errors.New("file search store has no name")
)

// Service defines the retrieval and answer operations exposed to handlers
type Service interface {
	// CreateStore creates a new store and returns its resource name
	CreateStore(ctx context.Context, displayName string) (string, error)
	// UploadFile uploads the file at filePath, indexes it into the store named
	// after fileName and returns that store's resource name
	UploadFile(ctx context.Context, filePath, fileName string) (string, error)
	// Answer asks question against the given store
	Answer(ctx context.Context, question, storeName string) (*Answer, error)
	// ListStores returns every store in listing order
	ListStores(ctx context.Context) ([]*genai.FileSearchStore, error)
}

// Client is the subset of the remote API the service relies on
type Client interface {
	UploadFile(ctx context.Context, r io.Reader, cfg *genai.UploadFileConfig) (*genai.File, error)
	CreateFileSearchStore(ctx context.Context, displayName string) (*genai.FileSearchStore, error)
	ListFileSearchStores(ctx context.Context, pageSize int, pageToken string) (*genai.ListFileSearchStoresResponse, error)
	ImportFile(ctx context.Context, storeName, fileName string) (*genai.ImportFileOperation, error)
	GetImportFileOperation(ctx context.Context, op *genai.ImportFileOperation) (*genai.ImportFileOperation, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Answer is a generated reply with the chunks that grounded it. Text is nil
// when the model produced no text part.
type Answer struct {
	Text      *string                 `json:"text"`
	Citations []*genai.GroundingChunk `json:"citations"`
}
