package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/koding/multiconfig"
)

// Config defines the evaluator service configuration. Values load from
// struct tags, OCR_-prefixed environment variables and command-line flags.
type Config struct {
	// kafka
	KafkaBrokers     string `flagUsage:"comma separated kafka broker list" default:"kafka:9092"`
	SubmissionsTopic string `flagUsage:"topic carrying submission jobs" default:"submissions"`
	VerdictsTopic    string `flagUsage:"topic receiving evaluation verdicts" default:"verdicts"`
	GroupID          string `flagUsage:"kafka consumer group id" default:"opencoderrank-evaluator"`

	// sandbox
	SandboxBackend string `flagUsage:"sandbox backend: docker (default) or process (degraded, no isolation)" default:"docker"`
	SandboxImage   string `flagUsage:"base image for evaluation containers" default:"python:3.9-slim"`
	ScratchRoot    string `flagUsage:"scratch root for evaluation workspaces (defaults to the OS temp dir)"`
	RuntimeConf    string `flagUsage:"optional yaml file overriding sandbox settings" default:"runtime.yaml"`

	// worker
	MaxJobs     int `flagUsage:"stop after this many jobs (0 keeps consuming)"`
	Parallelism int `flagUsage:"number of concurrent evaluations" default:"1"`

	// logger
	Release bool `flagUsage:"release level of logs"`
	Silent  bool `flagUsage:"do not print logs"`
}

// Load populates the config from tags, environment and flags, then applies
// the optional runtime file.
func (c *Config) Load() error {
	loader := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "OCR",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "OCR",
		},
	)
	if err := loader.Load(c); err != nil {
		return err
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
	return c.applyRuntimeFile()
}

// Brokers returns the broker list split from the comma separated flag value.
func (c *Config) Brokers() []string {
	fields := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

// runtimeFile overrides sandbox settings from a yaml file, so deployments
// can swap images or backends without re-flagging the service.
type runtimeFile struct {
	Image       string `yaml:"image"`
	Backend     string `yaml:"backend"`
	ScratchRoot string `yaml:"scratch_root"`
}

func (c *Config) applyRuntimeFile() error {
	if c.RuntimeConf == "" {
		return nil
	}

	data, err := os.ReadFile(c.RuntimeConf)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read runtime config %s: %w", c.RuntimeConf, err)
	}

	var rf runtimeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse runtime config %s: %w", c.RuntimeConf, err)
	}

	if rf.Image != "" {
		c.SandboxImage = rf.Image
	}
	if rf.Backend != "" {
		c.SandboxBackend = rf.Backend
	}
	if rf.ScratchRoot != "" {
		c.ScratchRoot = rf.ScratchRoot
	}
	return nil
}
