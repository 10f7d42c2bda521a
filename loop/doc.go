// Package loop provides utilities for loop representation and detection.
//
// Loop detection works on the control flow graph of an SSA function. Every
// back edge (an edge into a block that dominates its source) marks the header
// of a natural loop; the body of the loop is every block that can reach one of
// the header's back edges without passing through the header. Loops sharing a
// header are merged, and a loop nested in another is recorded as its child.
//
// The loops of a function form a Forest, stored as an arena of Loop records
// that refer to each other by index.
package loop
