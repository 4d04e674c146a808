// Package api implements the HTTP surface of the glossary service: route
// setup, request handlers, and response shaping over a storage.Store.
package api
