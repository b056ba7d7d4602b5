// Package match canonicalizes noisy university names by frequency-ranked
// clustering.
//
// The most common spellings become anchors; each anchor sweeps the full name
// list once, claiming variants by token sort ratio or substring containment.
// Claims are first-come-first-served in rank order and anchors that made
// claims stay fixed, which keeps the final mapping idempotent. The cost is
// O(topN x N) similarity checks over N distinct names.
package match
