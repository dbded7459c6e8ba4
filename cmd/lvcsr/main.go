// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command lvcsr drives the lexical-prefix-tree / look-ahead / beam-search
// decoder: build-lpt and build-lmla turn a lexicon into cached tree and
// look-ahead images, inspect reports what an image header carries, and
// decode runs a search over a precomputed score matrix.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var argsRoot struct {
	logFile struct {
		name string
		fd   *os.File
	}
	configPath string
}

var cmdRoot = &cobra.Command{
	Use:   "lvcsr",
	Short: "Lexical-prefix-tree beam-search decoder",
	Long:  `Build tree/look-ahead caches and run the beam-search decoder over a score matrix.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if argsRoot.logFile.name == "" {
			return nil
		}
		fd, err := os.OpenFile(argsRoot.logFile.name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		argsRoot.logFile.fd = fd
		log.SetOutput(fd)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if argsRoot.logFile.fd == nil {
			return nil
		}
		return argsRoot.logFile.fd.Close()
	},
}

func main() {
	log.SetFlags(log.Lshortfile | log.Ltime)
	if err := Execute(); err != nil {
		log.Fatal(err)
	}
}

// Execute wires every subcommand onto the root and runs it.
func Execute() error {
	cmdRoot.PersistentFlags().StringVar(&argsRoot.logFile.name, "log-file", "", "write logs to this file instead of stderr")
	cmdRoot.PersistentFlags().StringVar(&argsRoot.configPath, "config", "", "path to a search config YAML file (defaults built in if empty)")

	cmdRoot.AddCommand(cmdBuildLPT)
	cmdRoot.AddCommand(cmdBuildLMLA)
	cmdRoot.AddCommand(cmdInspect)
	cmdRoot.AddCommand(cmdDecode)

	return cmdRoot.Execute()
}

