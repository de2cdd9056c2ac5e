// Package flow implements the question-flow navigator: the branching state
// machine that decides which question node is visible, records answers as
// options are selected, and supports stack-based back navigation. The
// branching graph is plain data: nodes are flat list entries, edges are
// option-carried next ids plus an implicit next-in-order default, resolved by
// a pure lookup, so the machine is testable without any rendering layer.
package flow
