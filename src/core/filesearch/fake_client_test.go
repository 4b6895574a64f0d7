package filesearch_test

import (
	"context"
	"io"
	"sync"

	"google.golang.org/genai"

	"gemrag/src/infrastructure/integrations/gemini"
)

// fakeClient records calls and serves canned responses.
type fakeClient struct {
	mu sync.Mutex

	uploadErr     error
	uploaded      []genai.UploadFileConfig
	uploadedBytes []string

	pages   []genai.ListFileSearchStoresResponse
	listErr error
	tokens  []string

	createdStore *genai.FileSearchStore
	createErr    error
	created      []string

	importOp *genai.ImportFileOperation
	imports  [][2]string

	// operation states returned by successive polls
	polls    []*genai.ImportFileOperation
	pollErr  error
	getCalls int

	generated *genai.GenerateContentResponse
	genErr    error
	genConfig []*genai.GenerateContentConfig
	genPrompt []string
	genModels []string
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploaded) + len(f.tokens) + len(f.created) + len(f.imports) + f.getCalls + len(f.genConfig)
}

func (f *fakeClient) UploadFile(ctx context.Context, r io.Reader, cfg *genai.UploadFileConfig) (*genai.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := io.ReadAll(r)
	f.uploaded = append(f.uploaded, *cfg)
	f.uploadedBytes = append(f.uploadedBytes, string(data))
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &genai.File{Name: gemini.FileResourceName(cfg.Name), DisplayName: cfg.DisplayName}, nil
}

func (f *fakeClient) CreateFileSearchStore(ctx context.Context, displayName string) (*genai.FileSearchStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, displayName)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createdStore != nil {
		return f.createdStore, nil
	}
	return &genai.FileSearchStore{Name: "fileSearchStores/new", DisplayName: displayName}, nil
}

func (f *fakeClient) ListFileSearchStores(ctx context.Context, pageSize int, pageToken string) (*genai.ListFileSearchStoresResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, pageToken)
	if f.listErr != nil {
		return nil, f.listErr
	}
	idx := len(f.tokens) - 1
	if idx >= len(f.pages) {
		return &genai.ListFileSearchStoresResponse{}, nil
	}
	page := f.pages[idx]
	return &page, nil
}

func (f *fakeClient) ImportFile(ctx context.Context, storeName, fileName string) (*genai.ImportFileOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, [2]string{storeName, fileName})
	if f.importOp != nil {
		return f.importOp, nil
	}
	return &genai.ImportFileOperation{Name: storeName + "/operations/op", Done: true}, nil
}

func (f *fakeClient) GetImportFileOperation(ctx context.Context, op *genai.ImportFileOperation) (*genai.ImportFileOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if len(f.polls) == 0 {
		return &genai.ImportFileOperation{Name: op.Name}, nil
	}
	next := f.polls[0]
	f.polls = f.polls[1:]
	return next, nil
}

func (f *fakeClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genModels = append(f.genModels, model)
	f.genConfig = append(f.genConfig, config)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.genPrompt = append(f.genPrompt, contents[0].Parts[0].Text)
	}
	if f.genErr != nil {
		return nil, f.genErr
	}
	if f.generated != nil {
		return f.generated, nil
	}
	return &genai.GenerateContentResponse{}, nil
}
