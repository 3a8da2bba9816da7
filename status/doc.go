// Package status reports aggregate counters over the description store.
package status
