// Package cleanse turns raw extracted education rows into the cleaned
// table the matching stage consumes.
//
// Cleaning has three parts: university name normalization (accent folding,
// abbreviation expansion, punctuation and article removal, title casing),
// degree classification from free-form role titles via multilingual keyword
// containment with phd > masters > bachelors precedence, and row filtering
// (rows with empty required cells or unclassifiable titles are dropped and
// counted). Classification reproduces the established keyword behavior
// exactly, including its eagerness: "ma" matches inside "Mathematics".
package cleanse
