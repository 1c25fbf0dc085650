// Package attribute maps cell graphs to per-node attribute vectors.
//
// Attributes are named scalar quantities per cell: feature-channel intensities and
// phenotype indicator flags. In the tabular cell source they are distinguished by
// a column-name prefix (FT_ for channels, PH_ for phenotypes); every name handed
// to downstream consumers has that prefix stripped.
//
// A Source yields one row per node for a graph, in node order. Three sources are
// provided:
//
//   - Extractor: looks up rows in a Table keyed by the graph's NodeIDs.
//   - FeatureSource: uses the graph's own feature matrix.
//   - Static: per-graph arrays computed elsewhere.
package attribute
