// Package dispatch turns one raw request stream into one response.
//
// A Dispatcher parses the request, resolves it against a frozen router.Table,
// invokes the bound handler and applies content negotiation. Every failure is
// resolved into a response here: parse errors become 400, routing misses 404
// (or 405 when configured), handler errors are mapped by kind, and panics
// become 500. The Dispatcher never touches the network.
//
// # Content Negotiation
//
// When the request carries Accept-Encoding, the first client-listed scheme
// that the server supports is echoed back as Content-Encoding. The body is
// not compressed; this is a header echo only.
package dispatch
