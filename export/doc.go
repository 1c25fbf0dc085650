// Package export persists run reports to a blobstore.Store.
//
// Every Export call writes one run directory:
//
//	<root>/<run-id>/separability_concept.json
//	<root>/<run-id>/separability_attribute.json
//	<root>/<run-id>/separability_k_best_<a>_<b>.json
//	<root>/<run-id>/importances.json
//	<root>/<run-id>/classification.json
//	<root>/<run-id>/separability.xlsx
//	<root>/<run-id>/manifest.json
//
// Tables may be compressed with LZ4 or zstd, in which case their names carry a
// .lz4 or .zst suffix. The manifest is written last and is never compressed; a
// run directory without a manifest is incomplete.
package export
