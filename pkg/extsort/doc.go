// Package extsort implements a k-way external merge sort over in-memory
// sequences.
//
// The working sequence stands in for a file: every pass reads it front to
// back in batches of fixed-size pages, sorts pages locally on the first pass,
// groups them k at a time and merges the batch into one sorted run that is
// appended to the pass output. Runs double in page count on every pass until
// one run covers the whole sequence.
//
// Pages are windows over a shared backing buffer with a monotonically
// advancing head cursor, so building and consuming a page never copies or
// shifts elements. At most PassPageCount(k, n) pages of at most pageSize
// elements are live during pass n.
package extsort
