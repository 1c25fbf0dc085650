// Package graph defines the cell-graph data model shared by every stage of the engine.
//
// # Graphs
//
// A Graph is one region of interest (ROI) or whole specimen: nodes are cells and each
// node carries a numeric feature vector. Graph-level fields identify the graph (Name),
// group ROIs of the same specimen (Specimen), carry the ground-truth class (Label) and
// the data split the graph belongs to (Split).
//
// Topology is owned by the caller and never mutated. The only field the engine writes
// is Importance, and it does so on copies:
//
//	annotated := g.WithImportance(scores)
//
// # Models
//
// A trained classifier is exposed through the Model interface. Explainers that need
// model internals type-assert for GradientModel or AttentionModel.
package graph
