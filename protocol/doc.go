// Package protocol converts between raw HTTP/1.1 bytes and wirehttp values.
//
// Parser reads a single request from a stream: it accumulates bytes until the
// blank line that ends the head, parses the request line and headers, then
// reads exactly Content-Length body bytes. Serialize renders a Response into
// wire bytes with a deterministic header order.
//
// Only the subset needed for one request per connection is supported; there
// is no chunked transfer-encoding and no keep-alive handling.
package protocol
