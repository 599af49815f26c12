// Package config provides configuration structures and utilities for histsheet.
// It defines the options for encoding detection, record extraction, the
// conversion history database and summary report output.
package config
