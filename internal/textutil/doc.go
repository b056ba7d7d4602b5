// Package textutil provides the text similarity primitives behind university
// name canonicalization.
//
// The central operation is the token sort ratio: both inputs are lowercased,
// split on non-alphanumeric runes, token-sorted, and rejoined before their
// normalized indel similarity is computed on a 0-100 scale. Tokenizing this
// way makes the score insensitive to word order and punctuation, which is
// what free-text institution names need. A length-based ceiling lets hot
// loops skip the quadratic distance computation for hopeless pairs.
package textutil
