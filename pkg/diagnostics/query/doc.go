// Package query validates diagnostic queries and fills in defaults before they reach
// a storage backend.
package query
