package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeScorer()
	c.normalizeDelivery()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("MURAJAAH_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeScorer() {
	c.Scorer.Endpoint = strings.TrimSpace(c.Scorer.Endpoint)
	if c.Scorer.TimeoutSeconds <= 0 {
		c.Scorer.TimeoutSeconds = defaultScorerTimeoutSeconds
	}
}

func (c *Config) normalizeDelivery() {
	c.Delivery.NtfyBaseURL = strings.TrimRight(strings.TrimSpace(c.Delivery.NtfyBaseURL), "/")
	c.Delivery.TopicPrefix = strings.TrimSpace(c.Delivery.TopicPrefix)
	if c.Delivery.TopicPrefix == "" {
		c.Delivery.TopicPrefix = defaultNtfyTopicPrefix
	}
	if c.Delivery.TimeoutSeconds <= 0 {
		c.Delivery.TimeoutSeconds = defaultDeliveryTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Policy.VerificationMode = strings.ToLower(strings.TrimSpace(c.Policy.VerificationMode))
	if c.Policy.VerificationMode == "" {
		c.Policy.VerificationMode = defaultVerificationMode
	}
}
