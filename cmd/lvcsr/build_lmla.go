// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaissmai/lvcsr/internal/image"
	"github.com/gaissmai/lvcsr/internal/lmla"
)

var argsBuildLMLA struct {
	lptImagePath string
	lexiconPath  string
	grammarPath  string
	configCksum  uint32
	out          string
}

var cmdBuildLMLA = &cobra.Command{
	Use:   "build-lmla",
	Short: "Build a language-model look-ahead image from a tree image and an n-gram grammar",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(argsBuildLMLA.lptImagePath)
		if err != nil {
			return fmt.Errorf("build-lmla: open %s: %w", argsBuildLMLA.lptImagePath, err)
		}
		tree, err := image.ReadLPT(in, argsBuildLMLA.configCksum)
		in.Close()
		if err != nil {
			return fmt.Errorf("build-lmla: read tree image: %w", err)
		}

		lex, _, err := loadLexiconFile(argsBuildLMLA.lexiconPath)
		if err != nil {
			return err
		}

		model, err := loadNGramFile(argsBuildLMLA.grammarPath)
		if err != nil {
			return err
		}

		l := lmla.Build(tree, lex, model)

		out, err := os.Create(argsBuildLMLA.out)
		if err != nil {
			return fmt.Errorf("build-lmla: create %s: %w", argsBuildLMLA.out, err)
		}
		defer out.Close()

		if err := image.WriteLMLA(out, l, argsBuildLMLA.configCksum); err != nil {
			return fmt.Errorf("build-lmla: write image: %w", err)
		}

		log.Printf("build-lmla: wrote %s: %d nodes", argsBuildLMLA.out, l.NumNodes())
		return nil
	},
}

func init() {
	cmdBuildLMLA.Flags().StringVar(&argsBuildLMLA.lptImagePath, "lpt-image", "", "path to a tree image built by build-lpt")
	_ = cmdBuildLMLA.MarkFlagRequired("lpt-image")
	cmdBuildLMLA.Flags().StringVar(&argsBuildLMLA.lexiconPath, "lexicon", "", "path to the same lexicon JSON file build-lpt used")
	_ = cmdBuildLMLA.MarkFlagRequired("lexicon")
	cmdBuildLMLA.Flags().StringVar(&argsBuildLMLA.grammarPath, "grammar", "", "path to an n-gram grammar file")
	_ = cmdBuildLMLA.MarkFlagRequired("grammar")
	cmdBuildLMLA.Flags().Uint32Var(&argsBuildLMLA.configCksum, "config-checksum", 0, "config checksum the tree image was built with")
	cmdBuildLMLA.Flags().StringVar(&argsBuildLMLA.out, "out", "lmla.img", "output image path")
}
