//go:build swagger

package main

// Registers the document generated by `make swagger-gen` with swag.
import _ "majin/docs"
