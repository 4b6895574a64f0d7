package cmd

import (
	"github.com/spf13/viper"

	"gemrag/src/core/filesearch"
	"gemrag/src/infrastructure/integrations/gemini"
)

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Gemini API
	viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	viper.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	viper.BindEnv("gemini.api_version", "GEMINI_API_VERSION")
	viper.BindEnv("gemini.model", "GEMINI_MODEL")
	viper.BindEnv("gemini.timeout", "GEMINI_TIMEOUT")

	// File search workflow
	viper.BindEnv("rag.poll_interval", "RAG_POLL_INTERVAL")
	viper.BindEnv("rag.import_timeout", "RAG_IMPORT_TIMEOUT")
	viper.BindEnv("rag.list_page_size", "RAG_LIST_PAGE_SIZE")
	viper.BindEnv("rag.staging_dir", "RAG_STAGING_DIR")

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("server.swagger", "SERVER_SWAGGER")
	viper.BindEnv("server.mode", "GIN_MODE")

	// Logging
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.BindEnv("log.development", "LOG_DEVELOPMENT")

	viper.SetDefault("gemini.base_url", gemini.DefaultBaseURL)
	viper.SetDefault("gemini.api_version", gemini.DefaultAPIVersion)
	viper.SetDefault("gemini.model", gemini.DefaultModel)
	viper.SetDefault("gemini.timeout", "120s")

	viper.SetDefault("rag.poll_interval", filesearch.DefaultPollInterval.String())
	viper.SetDefault("rag.import_timeout", "0")
	viper.SetDefault("rag.list_page_size", filesearch.DefaultListPageSize)
	viper.SetDefault("rag.staging_dir", "./data")

	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("server.swagger", true)
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
}
