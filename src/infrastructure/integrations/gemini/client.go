// Package gemini adapts the genai SDK to the calls made by hosted file
// search: file uploads, file search stores, import operations and content
// generation.
package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/"
	DefaultAPIVersion = "v1beta"
	DefaultModel      = "gemini-2.5-flash"

	filesPrefix = "files/"
)

// Config holds the connection settings for the Gemini API
type Config struct {
	BaseURL    string
	APIVersion string
	APIKey     string
}

// Client groups the genai services used by the file search workflow
type Client struct {
	genai *genai.Client
}

// NewClient creates a Gemini developer API client. A nil httpClient uses
// the SDK default.
func NewClient(ctx context.Context, cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{genai: gc}, nil
}

// FileResourceName returns the full resource name for a file ID.
func FileResourceName(name string) string {
	if strings.HasPrefix(name, filesPrefix) {
		return name
	}
	return filesPrefix + name
}

// UploadFile stores the content of r as a file resource.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, cfg *genai.UploadFileConfig) (*genai.File, error) {
	return c.genai.Files.Upload(ctx, r, cfg)
}

func (c *Client) CreateFileSearchStore(ctx context.Context, displayName string) (*genai.FileSearchStore, error) {
	return c.genai.FileSearchStores.Create(ctx, &genai.CreateFileSearchStoreConfig{
		DisplayName: displayName,
	})
}

// ListFileSearchStores fetches a single page of stores. An empty pageToken
// requests the first page.
func (c *Client) ListFileSearchStores(ctx context.Context, pageSize int, pageToken string) (*genai.ListFileSearchStoresResponse, error) {
	page, err := c.genai.FileSearchStores.List(ctx, &genai.ListFileSearchStoresConfig{
		PageSize:  int32(pageSize),
		PageToken: pageToken,
	})
	if err != nil {
		return nil, err
	}
	return &genai.ListFileSearchStoresResponse{
		FileSearchStores: page.Items,
		NextPageToken:    page.NextPageToken,
	}, nil
}

// ImportFile starts indexing an uploaded file into a store.
func (c *Client) ImportFile(ctx context.Context, storeName, fileName string) (*genai.ImportFileOperation, error) {
	return c.genai.FileSearchStores.ImportFile(ctx, storeName, fileName, nil)
}

func (c *Client) GetImportFileOperation(ctx context.Context, op *genai.ImportFileOperation) (*genai.ImportFileOperation, error) {
	return c.genai.Operations.GetImportFileOperation(ctx, op, nil)
}

func (c *Client) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.genai.Models.GenerateContent(ctx, model, contents, config)
}
