// Package orders manages the lifecycle of customer orders: create, edit,
// delete and move between dates.
//
// The per-date order list is the source of truth. After every structural
// change the date's aggregate is recomputed from scratch and the whole book
// is persisted in one write; an error found before that write leaves the
// stored book untouched.
package orders
