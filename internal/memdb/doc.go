// Package memdb is an in-memory bridge.Database. It stores one node per
// vertex and one relationship per edge, assigns canonical ids of the form
// srv-N, and lets tests inject failures and inspect how many transactions
// were acquired and released.
package memdb
