package models

import (
	"strings"

	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

// StoredConfig is the small user-editable configuration record kept alongside
// the templates. Both fields are secrets.
type StoredConfig struct {
	ConnectionString string `json:"connectionString"`
	OpenAIAPIKey     string `json:"openAiKey"`
}

// Masked returns a copy safe to send back to a client: credentials inside the
// connection string are redacted and the API key is reduced to its last four
// characters.
func (c StoredConfig) Masked() StoredConfig {
	return StoredConfig{
		ConnectionString: logging.SanitizeConnectionString(c.ConnectionString),
		OpenAIAPIKey:     maskKey(c.OpenAIAPIKey),
	}
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
