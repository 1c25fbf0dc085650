// Package explain assigns per-node importance scores to cell graphs for a trained
// model.
//
// Explainer algorithms form a closed set selected by Kind:
//
//   - KindPruning ("pp"): seeded random node-mask sampling; a node is important when
//     predictions with the node kept differ from predictions with it masked.
//   - KindOcclusion ("occlusion"): drop in target-class probability when a single
//     node is masked.
//   - KindGradient ("gradcam"): rectified gradient-times-input, needs a
//     graph.GradientModel.
//   - KindAttention ("attention"): the model's own node attention, needs a
//     graph.AttentionModel.
//
// Compute runs an explainer over many graphs in parallel. Raw scores of every
// explainer are min-max normalised per graph into [0,1] so that explainers with
// different native ranges are comparable. Graphs are never mutated: annotated
// shallow copies are returned.
package explain
