// Package parser turns board listing pages and post pages into typed
// records. Listing and post parsing use goquery selections; the post body
// walk uses htmlquery to visit text nodes in document order.
package parser

import "errors"

var errNilDocument = errors.New("nil document")
