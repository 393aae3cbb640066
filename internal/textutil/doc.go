// Package textutil provides text normalization shared by the film and person
// documents: URL slugs and display casing for generated attribute values.
package textutil
