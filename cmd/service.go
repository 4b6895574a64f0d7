package cmd

import (
	"context"
	"net/http"

	"github.com/spf13/viper"

	"gemrag/src/core/filesearch"
	"gemrag/src/fsutil"
	"gemrag/src/infrastructure/integrations/gemini"
)

// newFileSearchService wires the Gemini client and the hosted service from
// the current configuration.
func newFileSearchService() (*filesearch.HostedService, error) {
	gc, err := gemini.NewClient(context.Background(), gemini.Config{
		BaseURL:    viper.GetString("gemini.base_url"),
		APIVersion: viper.GetString("gemini.api_version"),
		APIKey:     viper.GetString("gemini.api_key"),
	}, &http.Client{
		Timeout: viper.GetDuration("gemini.timeout"),
	})
	if err != nil {
		return nil, err
	}

	return filesearch.NewService(gc, fsutil.NewLocalFileStore(), filesearch.Config{
		Model:         viper.GetString("gemini.model"),
		PollInterval:  viper.GetDuration("rag.poll_interval"),
		ImportTimeout: viper.GetDuration("rag.import_timeout"),
		ListPageSize:  viper.GetInt("rag.list_page_size"),
	})
}
