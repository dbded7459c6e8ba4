// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default(): %v", err)
	}
}

func TestValidateRejectsLabelSyncWithoutEndLabel(t *testing.T) {
	cfg := Default()
	cfg.LabelSync = true
	if err := cfg.Validate(); !errors.Is(err, ErrMissingEndLabel) {
		t.Fatalf("Validate() = %v, want ErrMissingEndLabel", err)
	}
}

func TestValidateRejectsBlankLabelUnderLabelSync(t *testing.T) {
	cfg := Default()
	cfg.LabelSync = true
	cfg.HasEndLabel = true
	cfg.Topology.AllowBlankLabel = true
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidTopology) {
		t.Fatalf("Validate() = %v, want ErrInvalidTopology", err)
	}
}

func TestValidateRejectsNonPositivePruningLimit(t *testing.T) {
	cfg := Default()
	cfg.Pruning.LabelPruningLimit = 0
	if err := cfg.Validate(); !errors.Is(err, ErrNonPositivePruning) {
		t.Fatalf("Validate() = %v, want ErrNonPositivePruning", err)
	}
}

func TestLoadFillsDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decoder.yaml")
	yamlBody := "pruning:\n  label-pruning-limit: 5000\nrecombination:\n  allow-label-recombination: false\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pruning.LabelPruningLimit != 5000 {
		t.Fatalf("LabelPruningLimit = %d, want 5000", cfg.Pruning.LabelPruningLimit)
	}
	if cfg.Recombination.AllowLabelRecombination {
		t.Fatalf("AllowLabelRecombination overridden to false, still true")
	}
	if cfg.Pruning.HistogramPruningBins != Default().Pruning.HistogramPruningBins {
		t.Fatalf("HistogramPruningBins not left at default: %d", cfg.Pruning.HistogramPruningBins)
	}
}
