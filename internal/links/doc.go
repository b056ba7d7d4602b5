// Package links turns the matched education table into directed
// degree-transition edges between universities.
//
// Rows are grouped per person. A person whose rows do not map one-to-one
// onto degrees is ambiguous and contributes nothing. Transitions follow the
// degree ladder (bachelors to masters, masters to phd, bachelors to phd only
// when no masters stay exists) and must be temporally plausible: the source
// stay ends no later than the destination stay begins.
package links
