// Package aggregate pools node attribute rows into per-class distributions.
//
// Pooling happens in three steps:
//
//  1. Units groups graphs into pooling units. Without ROI merging every graph is
//     its own unit; with merging all graphs of one specimen form a single unit
//     whose rows are the concatenation of its graphs' rows in encounter order.
//  2. A Selection optionally weights or filters the nodes of each unit by their
//     importance annotation.
//  3. Pool row-stacks the surviving rows of every unit into one gonum matrix per
//     class. Classes without rows are dropped and the surviving class indices are
//     carried explicitly, in ascending order, for all downstream matrices.
package aggregate
