package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScorer(); err != nil {
		return err
	}
	if err := c.validatePolicy(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScorer() error {
	if !c.Scorer.Enabled {
		return nil
	}
	if c.Scorer.Endpoint == "" {
		return errors.New("scorer.endpoint must be set when scorer.enabled is true")
	}
	return nil
}

func (c *Config) validatePolicy() error {
	if c.Policy.Level < 1 || c.Policy.Level > 3 {
		return fmt.Errorf("policy.level must be 1, 2, or 3 (got %d)", c.Policy.Level)
	}
	switch c.Policy.VerificationMode {
	case "manual", "semi_auto", "full_auto":
	default:
		return fmt.Errorf("policy.verification_mode must be manual, semi_auto, or full_auto (got %q)", c.Policy.VerificationMode)
	}
	if c.Policy.AcceptThreshold < 0 || c.Policy.AcceptThreshold > 100 {
		return errors.New("policy.accept_threshold must be between 0 and 100")
	}
	if c.Policy.RejectThreshold < 0 || c.Policy.RejectThreshold > 100 {
		return errors.New("policy.reject_threshold must be between 0 and 100")
	}
	if c.Policy.RejectThreshold > c.Policy.AcceptThreshold {
		return errors.New("policy.reject_threshold must not exceed policy.accept_threshold")
	}
	if c.Policy.RequiredLearning < 1 || c.Policy.RequiredHalfPage < 1 || c.Policy.RequiredFullPage < 1 {
		return errors.New("policy required counts must be at least 1")
	}
	if c.Policy.HoursLearning < 0 || c.Policy.HoursHalfPage < 0 || c.Policy.HoursFullPage < 0 {
		return errors.New("policy stage hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
