// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package config holds the operator-facing tunables consumed by the
// search driver: pruning, recombination, topology, length
// normalisation, step re-normalisation, global pruning, fixed-beam and
// tree-instance lifecycle, plus the cache-archive root. Config is
// loaded from YAML so it can sit next to a deployment's other
// operator-facing settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Error is a sentinel configuration error, checked with errors.Is
// against one of the Err* constants below.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMissingEndLabel        = Error("missing end label for label-sync topology")
	ErrInvalidTopology        = Error("invalid topology combination")
	ErrNonPositivePruning     = Error("pruning limit must be positive")
	ErrInvalidHistogramBins   = Error("histogram-pruning-bins must be positive")
	ErrNegativeRecombination  = Error("recombination limit must be non-negative")
)

// Pruning_t groups the per-step label and word-end beam parameters.
type Pruning_t struct {
	LabelPruning      float64 `yaml:"label-pruning"`
	LabelPruningLimit int     `yaml:"label-pruning-limit"`
	LocalLabelPruning float64 `yaml:"local-label-pruning"`

	WordEndPruning      float64 `yaml:"word-end-pruning"`
	WordEndPruningLimit int     `yaml:"word-end-pruning-limit"`

	HistogramPruningBins int `yaml:"histogram-pruning-bins"`
}

// Topology_t groups the loop/blank transducer knobs.
type Topology_t struct {
	AllowLabelLoop                 bool    `yaml:"allow-label-loop"`
	AllowBlankLabel                bool    `yaml:"allow-blank-label"`
	MinLoopOccurrence              int     `yaml:"min-loop-occurance"`
	BlankLabelPenalty              float64 `yaml:"blank-label-penalty"`
	BlankLabelProbabilityThreshold float64 `yaml:"blank-label-probability-threshold"`
}

// Recombination_t groups within-tree and word-end recombination limits.
type Recombination_t struct {
	AllowLabelRecombination   bool `yaml:"allow-label-recombination"`
	LabelRecombinationLimit   int  `yaml:"label-recombination-limit"`
	AllowWordEndRecombination bool `yaml:"allow-word-end-recombination"`
	WordEndRecombinationLimit int  `yaml:"word-end-recombination-limit"`
}

// DecisionRule_t selects Viterbi vs. full-sum.
type DecisionRule_t struct {
	FullSumDecoding bool `yaml:"full-sum-decoding"`
	LabelFullSum    bool `yaml:"label-full-sum"`
}

// LengthNormalization_t groups prospect length-normalisation switches.
type LengthNormalization_t struct {
	LengthNormalization bool `yaml:"length-normalization"`
	NormalizeLabelOnly  bool `yaml:"normalize-label-only"`
	NormalizeWordOnly   bool `yaml:"normalize-word-only"`
}

// StepRenormalization_t groups the derived step length model (§4.4).
type StepRenormalization_t struct {
	StepReNormalization bool    `yaml:"step-re-normalization"`
	StepEarlyStop       bool    `yaml:"step-early-stop"`
	StepLengthOnly      bool    `yaml:"step-length-only"`
	StepLengthScale     float64 `yaml:"step-length-scale"`
}

// GlobalPruning_t groups cross-pool pruning policies.
type GlobalPruning_t struct {
	PruneWordsWithLabels bool `yaml:"prune-words-with-labels"`
	WordLengthBalance    bool `yaml:"word-length-balance"`

	// WordLengthScale shifts the label-pruning comparison by
	// word_length_scale · (word-count difference) when
	// WordLengthBalance is set, so a hypothesis carrying more words can
	// survive (or win) against a shorter one whose raw prospect is
	// better by less than that scaled gap.
	WordLengthScale float64 `yaml:"word-length-scale"`
}

// FixedBeam_t groups the simple-beam fallback mode.
type FixedBeam_t struct {
	FixedBeamSearch bool    `yaml:"fixed-beam-search"`
	EOSThreshold    float64 `yaml:"eos-threshold"`
}

// InstanceLifecycle_t groups tree-instance activation/deletion tuning.
type InstanceLifecycle_t struct {
	InstanceDeletionTolerance int `yaml:"instance-deletion-tolerance"`

	// InstanceLookaheadLabelThreshold is a fraction of the total labels
	// live across the whole beam: an instance only earns a full-order
	// look-ahead propagation once its own share of that total meets or
	// exceeds this value, otherwise it falls back to the cheaper
	// unigram vector. Zero disables the fallback (every instance always
	// gets full-order look-ahead).
	InstanceLookaheadLabelThreshold float64 `yaml:"instance-lookahead-label-threshold"`
}

// Persistence_t groups the on-disk cache-archive location.
type Persistence_t struct {
	CacheArchive string `yaml:"cache-archive"`
}

// TracePruning_t groups end-trace pool pruning for label-sync and
// alignment-sync topologies (§4.4): the end-trace pool is pruned
// independently of the live label/word-end beam.
type TracePruning_t struct {
	Margin float64 `yaml:"margin"`
	Limit  int     `yaml:"limit"`
}

// Config is the complete operator-facing option surface.
type Config struct {
	Pruning             Pruning_t             `yaml:"pruning"`
	Topology            Topology_t            `yaml:"topology"`
	Recombination       Recombination_t       `yaml:"recombination"`
	DecisionRule        DecisionRule_t        `yaml:"decision-rule"`
	LengthNormalization LengthNormalization_t `yaml:"length-normalization"`
	StepRenormalization StepRenormalization_t `yaml:"step-renormalization"`
	GlobalPruning       GlobalPruning_t       `yaml:"global-pruning"`
	FixedBeam           FixedBeam_t           `yaml:"fixed-beam"`
	InstanceLifecycle   InstanceLifecycle_t   `yaml:"instance-lifecycle"`
	Persistence         Persistence_t         `yaml:"persistence"`
	TracePruning        TracePruning_t        `yaml:"trace-pruning"`

	// EndLabel must be set for label-sync topologies; Validate checks this
	// against Topology.AllowBlankLabel's mutual-exclusion rule.
	EndLabel    int32 `yaml:"end-label"`
	HasEndLabel bool  `yaml:"has-end-label"`
	LabelSync   bool  `yaml:"label-sync"`
}

// Default returns the configuration the reference scorer and n-gram
// model are tuned against: generous pruning limits, Viterbi
// recombination, no length normalisation or step re-normalisation.
func Default() Config {
	return Config{
		Pruning: Pruning_t{
			LabelPruning:         14.0,
			LabelPruningLimit:    20000,
			LocalLabelPruning:    10.0,
			WordEndPruning:       10.0,
			WordEndPruningLimit:  2000,
			HistogramPruningBins: 100,
		},
		Topology: Topology_t{
			MinLoopOccurrence: 1,
		},
		Recombination: Recombination_t{
			AllowLabelRecombination:   true,
			AllowWordEndRecombination: true,
		},
		StepRenormalization: StepRenormalization_t{
			StepLengthScale: 1.0,
		},
		InstanceLifecycle: InstanceLifecycle_t{
			InstanceDeletionTolerance: 2,
		},
		TracePruning: TracePruning_t{
			Margin: 10.0,
			Limit:  2000,
		},
	}
}

// Load reads and parses a YAML configuration file over Default(): a
// field the file sets overrides its default, even when set to its zero
// value; a field the file omits keeps its default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fatal configuration/environment invariants
// (§7): these must be caught before any frame is processed.
func (c Config) Validate() error {
	if c.LabelSync && !c.HasEndLabel {
		return ErrMissingEndLabel
	}
	if c.Topology.AllowBlankLabel && c.LabelSync {
		return ErrInvalidTopology
	}
	if c.Pruning.LabelPruningLimit <= 0 || c.Pruning.WordEndPruningLimit <= 0 || c.TracePruning.Limit <= 0 {
		return ErrNonPositivePruning
	}
	if c.Pruning.HistogramPruningBins <= 0 {
		return ErrInvalidHistogramBins
	}
	if c.Recombination.LabelRecombinationLimit < 0 || c.Recombination.WordEndRecombinationLimit < 0 {
		return ErrNegativeRecombination
	}
	return nil
}
