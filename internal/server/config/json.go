package config

import (
	"encoding/json"
	"os"

	"github.com/dkravets/adminboard/internal/flagx"
	"github.com/dkravets/adminboard/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which accepts both string
// values such as "60m" and integer nanoseconds. After unmarshalling, set
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	AllowedPaths                 []string       `json:"allowed_paths"`
	FrontendURL                  string         `json:"frontend_url"`
	Environment                  string         `json:"environment"`
	SenderAddress                string         `json:"sender_address"`
	MailAPIKey                   string         `json:"mail_api_key"`
	MailEndpoint                 string         `json:"mail_endpoint"`
	IdentityEndpoint             string         `json:"identity_endpoint"`
	IdentityAPIKey               string         `json:"identity_api_key"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

// parseJson overlays configuration values from a JSON file, if one was
// named with the -c/-config flags. Only fields present in the file replace
// the current values. An unreadable or invalid file panics: a config file
// that was explicitly requested must not be silently skipped.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTokenValidityDuration.Duration != 0 {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AllowedPaths != nil {
		config.AllowedPaths = c.AllowedPaths
	}
	if c.FrontendURL != "" {
		config.FrontendURL = c.FrontendURL
	}
	if c.Environment != "" {
		config.Environment = c.Environment
	}
	if c.SenderAddress != "" {
		config.SenderAddress = c.SenderAddress
	}
	if c.MailAPIKey != "" {
		config.MailAPIKey = c.MailAPIKey
	}
	if c.MailEndpoint != "" {
		config.MailEndpoint = c.MailEndpoint
	}
	if c.IdentityEndpoint != "" {
		config.IdentityEndpoint = c.IdentityEndpoint
	}
	if c.IdentityAPIKey != "" {
		config.IdentityAPIKey = c.IdentityAPIKey
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}
