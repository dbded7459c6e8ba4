// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaissmai/lvcsr/internal/image"
	"github.com/gaissmai/lvcsr/internal/lmla"
	"github.com/gaissmai/lvcsr/internal/lpt"
	"github.com/gaissmai/lvcsr/internal/trace"
	"github.com/gaissmai/lvcsr/lexicon"
	"github.com/gaissmai/lvcsr/scorer"
	"github.com/gaissmai/lvcsr/search"
)

var argsDecode struct {
	lexiconPath  string
	lptImagePath string
	lmlaImage    string
	grammarPath  string
	framesPath   string
	blankLabel   int32
	endLabel     int32
	maxRTF       float64
	createLattice bool
}

var cmdDecode = &cobra.Command{
	Use:   "decode",
	Short: "Run the beam-search decoder over a precomputed score matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(argsRoot.configPath)
		if err != nil {
			return err
		}

		lex, _, err := loadLexiconFile(argsDecode.lexiconPath)
		if err != nil {
			return err
		}

		lptIn, err := os.Open(argsDecode.lptImagePath)
		if err != nil {
			return fmt.Errorf("decode: open %s: %w", argsDecode.lptImagePath, err)
		}
		var tree *lpt.Tree
		tree, err = image.ReadLPT(lptIn, 0)
		lptIn.Close()
		if err != nil {
			return fmt.Errorf("decode: read tree image: %w", err)
		}

		lmModel, err := loadNGramFile(argsDecode.grammarPath)
		if err != nil {
			return err
		}

		var l *lmla.LMLA
		if argsDecode.lmlaImage != "" {
			lmlaIn, err := os.Open(argsDecode.lmlaImage)
			if err != nil {
				return fmt.Errorf("decode: open %s: %w", argsDecode.lmlaImage, err)
			}
			l, err = image.ReadLMLA(lmlaIn, 0)
			lmlaIn.Close()
			if err != nil {
				return fmt.Errorf("decode: read look-ahead image: %w", err)
			}
		} else {
			l = lmla.Build(tree, lex, lmModel)
		}

		frames, err := loadFramesFile(argsDecode.framesPath)
		if err != nil {
			return err
		}

		caps := scorer.Capabilities{
			BlankLabelIndex:   -1,
			EndLabelIndex:     -1,
			UnknownLabelIndex: -1,
			StartLabelIndex:   -1,
		}
		if cfg.Topology.AllowBlankLabel {
			caps.BlankLabelIndex = argsDecode.blankLabel
			caps.UseVerticalTransition = true
		}
		if cfg.HasEndLabel {
			caps.EndLabelIndex = argsDecode.endLabel
		}

		sc := scorer.NewTabular(frames, caps)

		var rtf *search.RTFBudget
		if argsDecode.maxRTF > 0 {
			rtf = search.NewRTFBudget(argsDecode.maxRTF)
		}

		space := search.New(cfg, tree, lex, sc, lmModel, lmla.NewCache(l, lmModel), log.Default())
		space.SetRTFBudget(rtf)

		run := search.NewRun(space)
		result, err := run.Decode(context.Background(), sc.NumFrames(), argsDecode.createLattice)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		log.Printf("decode: run %s: prospect=%.3f fallback=%v", run.ID, result.Prospect, result.Fallback)
		printTracePath(space, lex, result.TraceRef)
		return nil
	},
}

func init() {
	cmdDecode.Flags().StringVar(&argsDecode.lexiconPath, "lexicon", "", "path to a lexicon JSON file")
	_ = cmdDecode.MarkFlagRequired("lexicon")
	cmdDecode.Flags().StringVar(&argsDecode.lptImagePath, "lpt-image", "", "path to a tree image built by build-lpt")
	_ = cmdDecode.MarkFlagRequired("lpt-image")
	cmdDecode.Flags().StringVar(&argsDecode.lmlaImage, "lmla-image", "", "path to a look-ahead image built by build-lmla (rebuilt from --grammar if empty)")
	cmdDecode.Flags().StringVar(&argsDecode.grammarPath, "grammar", "", "path to an n-gram grammar file")
	_ = cmdDecode.MarkFlagRequired("grammar")
	cmdDecode.Flags().StringVar(&argsDecode.framesPath, "frames", "", "path to a JSON [time][class] score matrix")
	_ = cmdDecode.MarkFlagRequired("frames")
	cmdDecode.Flags().Int32Var(&argsDecode.blankLabel, "blank-label", 0, "class index of the blank label, if topology.allow-blank-label is set")
	cmdDecode.Flags().Int32Var(&argsDecode.endLabel, "end-label", 0, "class index of the end label, if has-end-label is set")
	cmdDecode.Flags().Float64Var(&argsDecode.maxRTF, "max-rtf", 0, "soft real-time-factor cap; 0 disables it")
	cmdDecode.Flags().BoolVar(&argsDecode.createLattice, "lattice", false, "prune empty-lemma siblings before walking the result path")
}

// printTracePath walks ref's predecessor chain back to the root,
// logging the lemma each step of the way in emission order.
func printTracePath(space *search.SearchSpace, lex *lexicon.Lexicon, ref trace.ID) {
	var names []string
	for cur, ok := ref, ref != trace.None; ok; {
		tr := space.Arena().Get(cur)
		if tr == nil {
			break
		}
		if tr.Lemma != lexicon.InvalidLemma {
			if lemma, found := lex.Lemmas[tr.Lemma]; found {
				names = append([]string{lemma.Name}, names...)
			}
		}
		cur, ok = tr.Predecessor()
	}
	log.Printf("decode: path: %v", names)
}
