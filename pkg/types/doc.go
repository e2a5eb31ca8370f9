// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for sgce-audit: rubric
// criteria, per-criterion evaluation results, merged evaluation rows,
// class sessions and component configuration.
package types
