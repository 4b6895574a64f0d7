package filesearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"

	"gemrag/src/fsutil"
	"gemrag/src/infrastructure/integrations/gemini"
	"gemrag/src/log"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultListPageSize = 20
)

// Config tunes the hosted service
type Config struct {
	Model         string
	PollInterval  time.Duration
	ImportTimeout time.Duration // zero waits for as long as the caller's context allows
	ListPageSize  int
}

var (
	_ Service = (*HostedService)(nil)
	_ Client  = (*gemini.Client)(nil)
)

// HostedService implements Service on top of the Gemini file search API
type HostedService struct {
	client Client
	fs     fsutil.FileStore
	cfg    Config
}

// NewService creates a new HostedService
func NewService(client Client, fileStore fsutil.FileStore, cfg Config) (*HostedService, error) {
	if client == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if fileStore == nil {
		return nil, fmt.Errorf("file store is required")
	}
	if cfg.Model == "" {
		cfg.Model = gemini.DefaultModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ListPageSize <= 0 {
		cfg.ListPageSize = DefaultListPageSize
	}

	return &HostedService{
		client: client,
		fs:     fileStore,
		cfg:    cfg,
	}, nil
}

// CreateStore implements Service
func (s *HostedService) CreateStore(ctx context.Context, displayName string) (string, error) {
	store, err := s.client.CreateFileSearchStore(ctx, displayName)
	if err != nil {
		return "", err
	}
	if store == nil || store.Name == "" {
		return "", ErrEmptyStoreName
	}
	return store.Name, nil
}

// UploadFile implements Service. The file is uploaded under its sanitized
// name; if a store whose display name equals fileName already exists it is
// reused as is, otherwise a new store is created and the file imported into it.
func (s *HostedService) UploadFile(ctx context.Context, filePath, fileName string) (string, error) {
	info, err := s.fs.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("file %s does not exist: %w", filePath, fs.ErrNotExist)
		}
		return "", fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", filePath)
	}

	safeName := SanitizeName(fileName)
	if err := s.upload(ctx, filePath, safeName, fileName); err != nil {
		return "", err
	}

	existing, err := s.FindStore(ctx, fileName)
	if err != nil {
		return "", err
	}
	if existing != nil {
		log.Info("Found existing store", "file", fileName, "store", existing.Name)
		return existing.Name, nil
	}

	log.Info("Creating new store", "file", fileName)
	storeName, err := s.CreateStore(ctx, fileName)
	if err != nil {
		return "", fmt.Errorf("failed to create store for %s: %w", fileName, err)
	}

	op, err := s.client.ImportFile(ctx, storeName, gemini.FileResourceName(safeName))
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", fmt.Errorf("import into %s returned no operation", storeName)
	}

	op, err = s.waitForOperation(ctx, op)
	if err != nil {
		return "", err
	}
	if op.Error != nil {
		log.Error(operationError(op.Error), "Import operation finished with an error", "store", storeName, "operation", op.Name)
	}

	log.Info("Created store and imported file", "file", fileName, "store", storeName)
	return storeName, nil
}

// upload sends the file, treating an already-present resource as success.
func (s *HostedService) upload(ctx context.Context, filePath, safeName, fileName string) error {
	mimeType, err := s.detectMimeType(filePath)
	if err != nil {
		return err
	}

	r, err := s.fs.ReadFileAsStream(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer r.Close()

	_, err = s.client.UploadFile(ctx, r, &genai.UploadFileConfig{
		Name:        safeName,
		DisplayName: fileName,
		MIMEType:    mimeType,
	})
	switch {
	case err == nil:
		log.Info("Uploaded new file", "file", fileName, "resource", gemini.FileResourceName(safeName))
	case gemini.IsAlreadyExists(err):
		log.Info("File already exists remotely, switching to retrieval mode", "file", fileName)
	default:
		return fmt.Errorf("failed to upload %s: %w", fileName, err)
	}
	return nil
}

func (s *HostedService) detectMimeType(filePath string) (string, error) {
	r, err := s.fs.ReadFileAsStream(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer r.Close()

	mtype, err := mimetype.DetectReader(r)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to detect content type of %s: %w", filePath, err)
	}
	if mtype == nil {
		return "application/octet-stream", nil
	}
	// the upload header takes a bare media type
	return strings.TrimSpace(strings.SplitN(mtype.String(), ";", 2)[0]), nil
}

// FindStore returns the first store, in listing order, whose display name
// equals displayName, or nil if there is none. Display names are not unique
// remotely, so later matches are ignored.
func (s *HostedService) FindStore(ctx context.Context, displayName string) (*genai.FileSearchStore, error) {
	var found *genai.FileSearchStore
	err := s.eachStore(ctx, func(store *genai.FileSearchStore) bool {
		if store.DisplayName == displayName {
			found = store
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListStores implements Service
func (s *HostedService) ListStores(ctx context.Context) ([]*genai.FileSearchStore, error) {
	stores := []*genai.FileSearchStore{}
	err := s.eachStore(ctx, func(store *genai.FileSearchStore) bool {
		stores = append(stores, store)
		return true
	})
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// eachStore walks every page of stores until fn returns false.
func (s *HostedService) eachStore(ctx context.Context, fn func(*genai.FileSearchStore) bool) error {
	pageToken := ""
	for {
		page, err := s.client.ListFileSearchStores(ctx, s.cfg.ListPageSize, pageToken)
		if err != nil {
			return err
		}
		if page == nil {
			return nil
		}
		for _, store := range page.FileSearchStores {
			if store == nil {
				continue
			}
			if !fn(store) {
				return nil
			}
		}
		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

// waitForOperation polls op at a fixed interval until it is done.
func (s *HostedService) waitForOperation(ctx context.Context, op *genai.ImportFileOperation) (*genai.ImportFileOperation, error) {
	if s.cfg.ImportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ImportTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; !op.Done; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for operation %s: %w", op.Name, ctx.Err())
		case <-ticker.C:
		}

		next, err := s.client.GetImportFileOperation(ctx, op)
		if err != nil {
			return nil, err
		}
		if next.Name == "" {
			next.Name = op.Name
		}
		op = next
		log.Debug("Polled import operation", "operation", op.Name, "attempt", attempt, "done", op.Done)
	}
	return op, nil
}

// Answer implements Service
func (s *HostedService) Answer(ctx context.Context, question, storeName string) (*Answer, error) {
	resp, err := s.client.GenerateContent(ctx, s.cfg.Model, genai.Text(buildPrompt(question)), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{
			FileSearch: &genai.FileSearch{FileSearchStoreNames: []string{storeName}},
		}},
	})
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:      answerText(resp),
		Citations: citations(resp),
	}, nil
}

// answerText returns the text of the first candidate, or nil when it has no
// non-thought text part.
func answerText(resp *genai.GenerateContentResponse) *string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			text := resp.Text()
			return &text
		}
	}
	return nil
}

// citations returns the grounding chunks of the first candidate, never nil.
func citations(resp *genai.GenerateContentResponse) []*genai.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return []*genai.GroundingChunk{}
	}
	md := resp.Candidates[0].GroundingMetadata
	if md == nil || len(md.GroundingChunks) == 0 {
		return []*genai.GroundingChunk{}
	}
	return md.GroundingChunks
}

// operationError renders the status carried by a finished operation.
func operationError(status map[string]any) error {
	if msg, ok := status["message"].(string); ok && msg != "" {
		return fmt.Errorf("operation failed: %s", msg)
	}
	return fmt.Errorf("operation failed: %v", status)
}
