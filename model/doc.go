// Package model defines stable boundary types for API layers.
//
// Digest identity is unaffected by any projection. These structs are the only
// types intended for direct JSON/YAML serialization by consumers: the lookup
// request, the authority's verdict and the ledger record behind it.
package model
