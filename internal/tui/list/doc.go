// Package listview renders long selectable lists in a fixed-height window.
// Only the rows around the selection are rendered, so listing every cache
// entry stays cheap however large the caches grow.
package listview
