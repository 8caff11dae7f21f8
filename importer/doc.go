// Package importer loads a catalog bundle into a catalog repository.
//
// A bundle is a directory of JSON files, one per collection
// (variables.json, components.json, cellmls.json, sedmls.json,
// workspaces.json, images.json, units.json, maths.json), the cluster table
// (clusters.json) and one embedding index per searchable entity type
// (index_<entity>.json). Files that are absent are skipped, so a bundle may
// update part of a catalog.
package importer
