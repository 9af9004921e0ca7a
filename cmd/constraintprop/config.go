package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/constraintprop"
)

// fileConfig is the YAML configuration file. Zero values mean "use the
// library default".
type fileConfig struct {
	Clusters        int    `yaml:"clusters" validate:"gte=0"`
	Neighbors       int    `yaml:"neighbors" validate:"gte=0"`
	SkipCompletion  bool   `yaml:"skip_completion"`
	HardCannotLinks bool   `yaml:"hard_cannot_links"`
	Linkage         string `yaml:"linkage" validate:"omitempty,oneof=average single"`
	Metric          string `yaml:"metric"`
	LowMemory       bool   `yaml:"low_memory"`
	LeafSize        int    `yaml:"leaf_size" validate:"gte=0"`
	Algorithm       string `yaml:"algorithm" validate:"omitempty,oneof=auto kd_tree ball_tree brute"`
	Workers         int    `yaml:"workers" validate:"gte=0"`
	Debug           bool   `yaml:"debug"`
}

var validate = validator.New()

// loadFileConfig reads and validates a YAML config file. Unknown keys are
// rejected so typos do not silently fall back to defaults. An empty file is
// an empty config.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := fc.validate(); err != nil {
		return fc, fmt.Errorf("config %s: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) validate() error {
	if err := validate.Struct(fc); err != nil {
		return err
	}
	if _, err := constraintprop.MetricByName(fc.Metric); err != nil {
		return err
	}
	return nil
}

// libraryConfig converts fc into a constraintprop.Config.
func (fc fileConfig) libraryConfig() (constraintprop.Config, error) {
	metric, err := constraintprop.MetricByName(fc.Metric)
	if err != nil {
		return constraintprop.Config{}, err
	}
	cfg := constraintprop.DefaultConfig()
	cfg.NumClusters = fc.Clusters
	if fc.Neighbors > 0 {
		cfg.Neighbors = fc.Neighbors
	}
	cfg.SkipCompletion = fc.SkipCompletion
	cfg.HardCannotLinks = fc.HardCannotLinks
	if fc.Linkage != "" {
		cfg.Linkage = constraintprop.Linkage(fc.Linkage)
	}
	cfg.Metric = metric
	cfg.LowMemory = fc.LowMemory
	if fc.LeafSize > 0 {
		cfg.LeafSize = fc.LeafSize
	}
	if fc.Algorithm != "" {
		cfg.Algorithm = constraintprop.Algorithm(fc.Algorithm)
	}
	cfg.Workers = fc.Workers
	return cfg, nil
}
