// Package models provides shared data models and types for relman.
//
// This package contains the release vocabulary used across the command
// tree, the release engine and the local store.
//
// # Release Types
//
// A release bumps one component of a semantic version:
//   - Major: incompatible changes (X.0.0)
//   - Minor: backwards-compatible features (x.Y.0)
//   - Patch: backwards-compatible fixes (x.y.Z)
//
// [ReleaseAuto] defers the choice to the commits in range.
//
//	rt, err := models.ParseReleaseType("minor")
//	if err == nil && rt.IsValid() {
//	    fmt.Println("releasing", rt)
//	}
//
// # Range Modes
//
// [RangeMode] decides which previous tag opens the commit range of a
// release. See [RangeSinceLast] and [RangeSeries].
//
// # Records
//
// [Project], [Repository] and [Release] mirror the rows kept by the
// local store.
package models
