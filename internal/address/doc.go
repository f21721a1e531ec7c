// Package address maps traversal indices to the logical addresses of the
// nodes a traversal step reads or interacts with.
//
// A Scheme is a pure function of (thread, reply). The traversal engine asks
// for a fresh Set every time either index changes and never reuses a Set
// across steps.
package address
