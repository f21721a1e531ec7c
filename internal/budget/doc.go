// Package budget decides when a traversal has spent its count or time budget.
//
// A Budget is a value with no I/O. The traversal engine evaluates it before
// each thread-level step; replies already being read are not interrupted.
package budget
