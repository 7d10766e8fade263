// Package autosplit turns polled Sonic 3 A.I.R. memory into timer events.
//
// Derive samples the game's RAM once per tick into a Watchers set. The
// ShouldStart, ShouldSplit and ShouldReset predicates then compare the
// previous and current samples against the run Settings. None of them
// touch memory directly, so a decision always sees one consistent tick.
package autosplit
