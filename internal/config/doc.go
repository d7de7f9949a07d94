// Package config defines the format-agnostic configuration model of a
// graphkit document, along with the Loader interface that produces it.
//
// A document describes one replica: how it syncs with peers, where it
// persists, the vertices and edges it is seeded with and the queries to
// evaluate against it. Concrete loaders, such as the HCL one in
// internal/hcl, translate their format into a Model and leave
// interpretation to the app package.
package config
