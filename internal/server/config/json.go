package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/flagx"
	"github.com/dmitrijs2005/stickyhabits/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "24h"-style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	StorageBackend               string         `json:"storage_backend"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	Owner                        string         `json:"owner"`
	DevFeePercent                *uint8         `json:"dev_fee_percent"`
	AcquisitionPeriod            timex.Duration `json:"acquisition_period"`
	GracePeriod                  timex.Duration `json:"grace_period"`
	PayoutInterval               timex.Duration `json:"payout_interval"`
	PayoutWebhookURL             string         `json:"payout_webhook_url"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config (or $STICKYHABITS_CONFIG)
// on config. Keys missing from the file leave the current value alone.
// An unreadable or malformed file panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.Owner, c.Owner)
	if c.DevFeePercent != nil {
		config.DevFeePercent = *c.DevFeePercent
	}
	setDuration(&config.AcquisitionPeriod, c.AcquisitionPeriod)
	setDuration(&config.GracePeriod, c.GracePeriod)
	setDuration(&config.PayoutInterval, c.PayoutInterval)
	setString(&config.PayoutWebhookURL, c.PayoutWebhookURL)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
