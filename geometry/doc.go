// Package geometry holds the planar primitives heatnet works with: points,
// polylines, closest-point projection, offset points and a coordinate-keyed
// index that turns raw line endpoints into deduplicated vertex ids.
//
// Coordinates are projected metres. Equality is exact: two points share an
// index entry only if both coordinates compare equal.
package geometry
