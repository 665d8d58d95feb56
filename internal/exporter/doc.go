// Package exporter writes cleaned epoch tables and trial metadata to CSV
// or Excel files for downstream analysis tooling. Rows carry the provenance
// (file) and trial index columns first, followed by one column per sample
// offset.
package exporter
