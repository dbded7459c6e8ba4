// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gaissmai/lvcsr/lm"
	"github.com/gaissmai/lvcsr/scorer"
)

// loadNGramFile parses a line-oriented n-gram grammar: each line is
// "weight backoffWeight context... word", weights given as costs
// (negated log-probabilities; lower is better), context a whitespace
// separated history of zero or more tokens. "<s>"/"</s>" are the
// model's fixed sentence boundary tokens. Blank lines and lines
// starting with # are ignored.
func loadNGramFile(path string) (*lm.NGram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grammar: open %s: %w", path, err)
	}
	defer f.Close()

	b := lm.NewNGramBuilder("<s>", "</s>")

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("grammar: %s:%d: want \"weight backoff context... word\", got %q", path, lineNo, line)
		}
		weight, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("grammar: %s:%d: weight: %w", path, lineNo, err)
		}
		backoff, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("grammar: %s:%d: backoff: %w", path, lineNo, err)
		}
		rest := fields[2:]
		word := lm.Token(rest[len(rest)-1])
		context := make([]lm.Token, len(rest)-1)
		for i, tok := range rest[:len(rest)-1] {
			context[i] = lm.Token(tok)
		}
		b.AddNGram(context, word, scorer.Score(weight), scorer.Score(backoff))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("grammar: read %s: %w", path, err)
	}

	return b.Build(), nil
}
