// Package assets imports remote images into the local content store.
//
// ImportAsset makes a single bounded attempt: download with its own timeout
// and size cap, require an image content type, write the bytes under the
// asset directory named by their SHA-256, and record metadata in the store.
// Any failure is logged and reported as a nil reference; a missing image
// never aborts an import.
package assets
