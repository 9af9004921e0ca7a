// Package constraintprop turns a sparse set of pairwise must-link and
// cannot-link constraints into labels for the constrained samples, using a
// hierarchical clustering of the whole dataset as the prior. The labeled
// samples can then train any ordinary supervised classifier.
//
// Basic usage:
//
//	cfg := constraintprop.DefaultConfig()
//	cfg.NumClusters = 3
//	// rows are (a, b, kind): kind 1 = must-link, 0 = cannot-link
//	result, err := constraintprop.Propagate(data, [][3]int{{0, 7, 1}, {7, 12, 0}}, cfg)
//	// result.Samples[i] is a constrained sample index
//	// result.Labels[i] is its label
//	X, y := result.TrainingSet(data)
//
// # Pipeline
//
// The dendrogram is walked from the leaves to the root. Whenever a merge
// would not put two cannot-linked samples together, the constrained samples
// of both subtrees take one label ([Agglomerate]). Each resulting label
// becomes a node with a centroid and a population, and every node pair is
// weighted by its must-link count minus its cannot-link count
// ([BuildNodeGraph]). Nodes with no constraint evidence are weakly linked to
// their nearest neighbours ([CompleteGraph]). Finally the most agreeing pair
// is merged repeatedly until no positive agreement is left or the target
// cluster count is reached ([GreedyCut]), and the node partition is mapped
// back onto the samples ([TranslateLabels]). The cut weighs cannot-links only
// through the net agreement; set Config.HardCannotLinks to keep every
// cannot-linked pair apart in the final labels as well.
//
// The cut is a greedy approximation: it does not backtrack and can return a
// locally optimal partition. Unconstrained samples are not labeled.
//
// For a dendrogram computed elsewhere (e.g. scipy linkage output):
//
//	d, err := constraintprop.DendrogramFromLinkage(rows, len(data))
//	result, err := constraintprop.PropagateDendrogram(data, constraints, d, cfg)
package constraintprop
