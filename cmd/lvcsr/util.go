// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"hash/fnv"

	"github.com/gaissmai/lvcsr/config"
)

// loadConfig reads path if non-empty, otherwise returns config.Default's
// tuning for the reference scorer and n-gram model.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// fnv32 hashes s into the uint32 checksum internal/image's Header and
// the cache store's Record carry alongside a built tree or look-ahead
// table.
func fnv32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
