// Package config loads application configuration from environment
// variables (ABR_ prefix) and an optional abrdata.yaml file in the working
// directory, with environment values taking precedence. Relative
// directories are resolved against the working directory at load time.
package config
