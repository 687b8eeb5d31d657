package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Task kinds understood by the task registry.
const (
	KindDownload     = "download"
	KindManifest     = "manifest"
	KindCommand      = "command"
	KindYALTAi       = "yaltai"
	KindKraken       = "kraken"
	KindALTOCleanup  = "alto-cleanup"
	KindExtractZones = "extract-zones"
	KindClear        = "clear"
	KindPDFExtract   = "pdf-extract"
)

// Pipeline contains the input source and batching configuration.
type Pipeline struct {
	// InputList is a whitespace separated file of URIs or paths.
	InputList string `toml:"input_list" yaml:"input_list"`
	BatchSize int    `toml:"batch_size" yaml:"batch_size"`
	// Workers is the default worker budget for tasks that leave it unset.
	Workers int `toml:"workers" yaml:"workers"`
	// Dir is the destination directory paired with each input when the
	// first task consumes (URI, directory) pairs.
	Dir string `toml:"dir" yaml:"dir"`
}

// Downstream configures the chained completion check of a download task.
type Downstream struct {
	Ext          string  `toml:"ext" yaml:"ext"`
	CheckContent bool    `toml:"check_content" yaml:"check_content"`
	MinLines     int     `toml:"min_lines" yaml:"min_lines"`
	MinRatio     float64 `toml:"min_ratio" yaml:"min_ratio"`
}

// Task declares one step of the pipeline. Fields irrelevant to a kind are
// ignored.
type Task struct {
	Name    string `toml:"name" yaml:"name"`
	Kind    string `toml:"kind" yaml:"kind"`
	From    string `toml:"from" yaml:"from"`
	Workers int    `toml:"workers" yaml:"workers"`

	// command, yaltai, kraken
	Command      string  `toml:"command" yaml:"command"`
	Binary       string  `toml:"binary" yaml:"binary"`
	Device       string  `toml:"device" yaml:"device"`
	Model        string  `toml:"model" yaml:"model"`
	LineModel    string  `toml:"line_model" yaml:"line_model"`
	OutputExt    string  `toml:"output_ext" yaml:"output_ext"`
	FailFast     bool    `toml:"fail_fast" yaml:"fail_fast"`
	CheckContent bool    `toml:"check_content" yaml:"check_content"`
	MinLines     int     `toml:"min_lines" yaml:"min_lines"`
	MinRatio     float64 `toml:"min_ratio" yaml:"min_ratio"`

	// download, manifest, pdf-extract
	OutputPrefix string      `toml:"output_prefix" yaml:"output_prefix"`
	OutputDir    string      `toml:"output_dir" yaml:"output_dir"`
	MaxWidth     int         `toml:"max_width" yaml:"max_width"`
	MaxHeight    int         `toml:"max_height" yaml:"max_height"`
	Downstream   *Downstream `toml:"downstream" yaml:"downstream"`
	StartOn      int         `toml:"start_on" yaml:"start_on"`

	// extract-zones
	Zones []string `toml:"zones" yaml:"zones"`
}

// PipelineFile is the standalone pipeline definition accepted by LoadPipeline.
type PipelineFile struct {
	Pipeline Pipeline `toml:"pipeline" yaml:"pipeline"`
	Tasks    []Task   `toml:"tasks" yaml:"tasks"`
}

// LoadPipeline reads a standalone pipeline definition and merges it into
// the config, replacing its task list. The format follows the extension:
// .yaml/.yml use YAML, anything else TOML.
func (c *Config) LoadPipeline(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return fmt.Errorf("read pipeline: %w", err)
	}

	var file PipelineFile
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = toml.Unmarshal(data, &file)
	}
	if err != nil {
		return fmt.Errorf("parse pipeline %s: %w", expanded, err)
	}

	if strings.TrimSpace(file.Pipeline.InputList) != "" {
		c.Pipeline.InputList = file.Pipeline.InputList
	}
	if file.Pipeline.BatchSize > 0 {
		c.Pipeline.BatchSize = file.Pipeline.BatchSize
	}
	if file.Pipeline.Workers > 0 {
		c.Pipeline.Workers = file.Pipeline.Workers
	}
	if strings.TrimSpace(file.Pipeline.Dir) != "" {
		c.Pipeline.Dir = file.Pipeline.Dir
	}
	c.Tasks = file.Tasks

	if err := c.normalizePipeline(); err != nil {
		return err
	}
	return c.Validate()
}

// TaskByName returns the task definition with the given name.
func (c *Config) TaskByName(name string) (Task, bool) {
	for _, t := range c.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// EffectiveWorkers returns the task worker budget, falling back to the
// pipeline default and finally to sequential execution.
func (c *Config) EffectiveWorkers(t Task) int {
	if t.Workers > 0 {
		return t.Workers
	}
	if c.Pipeline.Workers > 0 {
		return c.Pipeline.Workers
	}
	return 1
}
