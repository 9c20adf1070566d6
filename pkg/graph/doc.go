// Package graph implements a directed-acyclic audio/event graph compiler.
//
// # Overview
//
// Callers build a mutable, port-level graph of processing nodes (AddNode,
// AddPort, Connect, SetDelay, and their inverses), and then call Compile to
// turn it into a linear schedule: a topological visit order, a pool of reused
// typed intermediate buffers with per-edge producer/consumer assignments, and
// per-edge delay-compensation values that align the latency of parallel paths
// feeding a common node.
//
// # Key Algorithms
//
// Cycle guard:
//   - Every Connect performs a breadth-first reachability walk forward from
//     the destination node through the dependents relation.
//   - If the walk reaches the source node, the edge is rejected as a Cycle
//     before anything is mutated.
//
// Topological walk (Kahn's algorithm):
//   - In-degree is the live dependency-edge count of each node.
//   - The initial zero-in-degree nodes are queued in ascending handle order;
//     each visit decrements its dependents' in-degree, and a dependent that
//     reaches zero joins the back of the queue.
//
// Latency solving:
//   - Each node's arrival latency is the max over its dependency edges of
//     (producer arrival latency + producer intrinsic delay).
//   - Edges whose path latency falls short of that max record a per-edge
//     delay-compensation value, computed while the node is visited.
//
// Buffer allocation:
//   - One free list per port type. A node's outputs acquire (or reuse) a
//     buffer on their first outgoing edge; a node's inputs decrement the
//     producer's refcount and release the buffer once it reaches zero.
//   - Outputs are always processed before inputs for a visited node, so a
//     port that both produces and consumes within one node acquires before
//     it drains.
//
// # Handle Recycling
//
// NodeHandle and PortHandle are dense integer indices, stable for the
// lifetime of their referent and recycled (reused) after deletion. A handle
// is valid iff its index is within the current high-water mark and the slot
// it names has not been freed.
//
// # Determinism
//
// The compiled schedule is a deterministic function of graph state: the
// walker starts from the zero-in-degree nodes in ascending handle order,
// per-node adjacency is iterated in insertion order, and nodes that become
// ready later are visited in the order they were released (FIFO).
//
// # Thread Safety
//
// A Graph is not safe for concurrent use. It is exclusively owned by one
// logical mutator at a time, and Compile must not be called reentrantly.
package graph
