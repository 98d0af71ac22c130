// Package formats provides parsers for Ragnarok Online map data.
//
// Only the GAT (Ground Altitude Table) format is supported, with an encoder
// for authoring maps.
package formats
