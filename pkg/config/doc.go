// Package config loads the scanner's YAML configuration file and applies
// the stock hardware defaults for anything the file leaves unset.
package config
