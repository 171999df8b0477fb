// Package wirehttp provides the value types of a minimal HTTP/1.1 server
// that reads requests straight off a TCP stream and writes raw responses back.
//
// The server is small: one request per connection, no chunked
// transfer-encoding and no TLS. It exists to show the moving parts of an HTTP
// server without the net/http machinery in between.
//
// # Key Components
//
//   - Request: parsed request line, headers, raw body and matched path params
//   - Response / ResponseBuilder: status, headers and body produced by handlers
//   - Handler: application callback bound to a route
//   - Env: shared read-only context handed to every handler
//   - FileStorage: interface for the working directory behind the /files routes
//
// # Pipeline
//
// Bytes flow strictly in one direction per connection:
//
//	conn -> protocol.Parser -> router.Table -> dispatch.Dispatcher -> Handler
//	     -> Response -> protocol.Serialize -> conn
//
// # Example Usage
//
//	b := router.NewBuilder()
//	_ = b.Get("/echo/{str}", func(ctx context.Context, req *wirehttp.Request, env *wirehttp.Env) (*wirehttp.Response, error) {
//	    s, _ := req.PathParam("str")
//	    return wirehttp.NewResponse().Status(wirehttp.StatusOK).Text(s).Build(), nil
//	})
//	d := dispatch.New(&dispatch.Config{}, b.Build(), env)
//	srv := &server.Server{Addr: "127.0.0.1:4221", Handler: d}
//	err := srv.ListenAndServe(ctx)
//
// See the protocol, router, dispatch and server packages for the pipeline
// stages, and the api package for the stock routes.
package wirehttp
