// Package graph exports the degree-transition network as a Gephi-compatible
// GEXF file.
//
// Each university becomes a node placed at the coordinates of its modal city,
// looked up in a world-cities table. Parallel links collapse into single
// weighted edges. A person moving between degrees at one institution yields a
// self-loop, which Gephi renders as such.
package graph
