// Package aggregate fans a single logical query out to every eligible
// backend concurrently and combines the results. A backend's failure is
// captured as that backend's entry; it never fails the aggregate.
package aggregate
