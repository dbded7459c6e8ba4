// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaissmai/lvcsr/internal/image"
)

var argsInspect struct {
	path           string
	kind           string
	configChecksum uint32
}

var cmdInspect = &cobra.Command{
	Use:   "inspect",
	Short: "Report what a tree or look-ahead cache image was built from",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(argsInspect.path)
		if err != nil {
			return fmt.Errorf("inspect: open %s: %w", argsInspect.path, err)
		}
		defer f.Close()

		switch argsInspect.kind {
		case "lpt":
			tree, err := image.ReadLPT(f, argsInspect.configChecksum)
			if stale := asStale(err); stale != nil {
				log.Printf("inspect: %s: %s mismatch (stored %d, expected %d)", argsInspect.path, stale.Field, stale.Got, stale.Want)
				return nil
			} else if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			log.Printf("inspect: %s: lpt image, %d nodes, %d exits", argsInspect.path, tree.NumNodes(), tree.NumExits())
		case "lmla":
			l, err := image.ReadLMLA(f, argsInspect.configChecksum)
			if stale := asStale(err); stale != nil {
				log.Printf("inspect: %s: %s mismatch (stored %d, expected %d)", argsInspect.path, stale.Field, stale.Got, stale.Want)
				return nil
			} else if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			log.Printf("inspect: %s: lmla image, %d nodes", argsInspect.path, l.NumNodes())
		default:
			return fmt.Errorf("inspect: unknown --kind %q (want lpt or lmla)", argsInspect.kind)
		}
		return nil
	},
}

func init() {
	cmdInspect.Flags().StringVar(&argsInspect.path, "image", "", "path to an image file")
	_ = cmdInspect.MarkFlagRequired("image")
	cmdInspect.Flags().StringVar(&argsInspect.kind, "kind", "lpt", "image kind: lpt or lmla")
	cmdInspect.Flags().Uint32Var(&argsInspect.configChecksum, "config-checksum", 0, "expected config checksum; mismatches are reported, not treated as failures")
}

func asStale(err error) *image.StaleError {
	var stale *image.StaleError
	if errors.As(err, &stale) {
		return stale
	}
	return nil
}
