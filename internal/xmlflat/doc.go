// Package xmlflat converts XML documents into flat dotted-key records.
//
// The flattener walks decoder tokens with an explicit stack instead of
// building a DOM, so memory use is bounded by document depth rather than
// document size. Namespaces are stripped to local names, attributes surface
// as "<path>.@<name>" keys, and only character data ahead of an element's
// first child counts as its text.
package xmlflat
