// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gaissmai/lvcsr/scorer"
)

// loadFramesFile parses a JSON [time][class] score matrix, the shape
// scorer.Tabular serves directly, standing in for a real acoustic
// front-end's frame-by-frame emission scores.
func loadFramesFile(path string) ([][]scorer.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("frames: read %s: %w", path, err)
	}
	var raw [][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("frames: parse %s: %w", path, err)
	}
	frames := make([][]scorer.Score, len(raw))
	for i, row := range raw {
		frames[i] = make([]scorer.Score, len(row))
		for j, v := range row {
			frames[i][j] = scorer.Score(v)
		}
	}
	return frames, nil
}
