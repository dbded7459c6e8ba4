// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaissmai/lvcsr/internal/image"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/scorer"
)

var argsBuildLPT struct {
	lexiconPath string
	topology    string
	skipSilence bool
	out         string
}

var cmdBuildLPT = &cobra.Command{
	Use:   "build-lpt",
	Short: "Build a lexical prefix tree image from a lexicon file",
	RunE: func(cmd *cobra.Command, args []string) error {
		lex, phonemes, err := loadLexiconFile(argsBuildLPT.lexiconPath)
		if err != nil {
			return err
		}

		topo, err := parseTopology(argsBuildLPT.topology)
		if err != nil {
			return err
		}

		_ = phonemes // phoneme ids were already assigned in first-seen order while loading

		tokenLabels := internTokenLabels(lex)

		cfg := lpt.Config{
			Topology:    topo,
			SkipSilence: argsBuildLPT.skipSilence,
			PhonemeLabel: func(p lexicon.PhonemeID) (int32, bool) {
				return int32(p), true
			},
			TokenLabel: func(token string) (int32, bool) {
				id, ok := tokenLabels[token]
				return id, ok
			},
		}

		tree, err := lpt.Build(cfg, lex, scorer.Capabilities{})
		if err != nil {
			return fmt.Errorf("build-lpt: %w", err)
		}

		out, err := os.Create(argsBuildLPT.out)
		if err != nil {
			return fmt.Errorf("build-lpt: create %s: %w", argsBuildLPT.out, err)
		}
		defer out.Close()

		checksum := fnv32(cfg.ConfigFingerprint())
		if err := image.WriteLPT(out, tree, checksum); err != nil {
			return fmt.Errorf("build-lpt: write image: %w", err)
		}

		log.Printf("build-lpt: wrote %s: %d nodes, %d exits, config-checksum=%d", argsBuildLPT.out, tree.NumNodes(), tree.NumExits(), checksum)
		return nil
	},
}

func init() {
	cmdBuildLPT.Flags().StringVar(&argsBuildLPT.lexiconPath, "lexicon", "", "path to a lexicon JSON file")
	_ = cmdBuildLPT.MarkFlagRequired("lexicon")
	cmdBuildLPT.Flags().StringVar(&argsBuildLPT.topology, "topology", "word", "tree topology: word, subword or phoneme")
	cmdBuildLPT.Flags().BoolVar(&argsBuildLPT.skipSilence, "skip-silence", false, "omit the lexicon's silence lemma from the tree")
	cmdBuildLPT.Flags().StringVar(&argsBuildLPT.out, "out", "lpt.img", "output image path")
}

func parseTopology(name string) (lpt.Topology, error) {
	switch name {
	case "word":
		return lpt.TopologyWord, nil
	case "subword":
		return lpt.TopologySubword, nil
	case "phoneme":
		return lpt.TopologyPhoneme, nil
	default:
		return 0, fmt.Errorf("build-lpt: unknown topology %q (want word, subword or phoneme; hmm needs a Config.HMM source this command does not collect)", name)
	}
}
