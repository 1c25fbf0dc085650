// Package separability scores how distinguishable classes are under a set of
// attributes.
//
// A score combines a class distance matrix with a risk matrix and an optional
// prior:
//
//	score = Σ_{i<j} d[i][j] · risk[i][j] · prior[i][j]
//
// computed at full precision and rounded to four decimal digits. The Scorer
// builds the three reporting views on top of that formula: a concept table
// (groups, or every attribute jointly), an attribute table (each attribute alone)
// and per class pair k-best tables found by Search, an exhaustive but bounded
// enumeration of size-k attribute subsets.
package separability
