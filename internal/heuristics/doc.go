// Package heuristics supplies the tunable tables behind intent
// classification and entity extraction: synonym maps, intent keyword lists,
// phrase triggers, extraction regex patterns, fuzzy-match thresholds and
// feature flags. Everything has a built-in default; a config file overrides
// selectively and can be hot-reloaded without restarting the process.
package heuristics
