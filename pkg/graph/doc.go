// Package graph defines the path graph behind a cutter outline.
// Nodes are the bends and joints of the cutting wire and carry at most two
// edges; edges are quadratic Bézier curves between two distinct nodes.
// The graph is owned by the surrounding application and mutated
// interactively; every derived structure (forms, segments, meshes) is
// recomputed from it on demand.
package graph
