// Package scheduling holds the pure rules of the booking engine: the half-open
// interval overlap predicate, the booking permission check, standard slot
// resolution and the availability classifier.
//
// Nothing here performs I/O. The read path (availability hints) and the write
// path (booking creation) call the same functions so they cannot disagree.
package scheduling
