// Package config loads application configuration from GLOSSARY_*
// environment variables and validates it.
package config
