// Package source selects how a source reference is traversed.
//
// A Variant pairs a recognizer over source references with everything the
// traversal engine needs for that kind of page: an address scheme, a start
// hook and wait bounds. A Registry holds variants in a fixed order and hands
// out the first one whose recognizer accepts a reference.
//
// Two variants are built in: "watch" for regular video pages, whose comments
// form a flat list of threads under the player, and "shorts" for short-form
// videos, whose comments live in a side panel that must be opened first.
package source
