// Package api exposes the track dispatcher, the multi-kind runner, and the
// summary builder over HTTP.
//
// # Routes
//
//	GET  /health             liveness and version
//	GET  /v1/kinds           supported kinds with their parameters
//	POST /v1/tracks/{kind}   run one kind over a shard set
//	POST /v1/runs            run several kinds in order
//	POST /v1/summary         build the analytics results document
//
// # Design Notes
//
// Requests and responses use camelCase JSON, except track results and the
// results document, which keep the PascalCase keys consumers of the stored
// files already read. Errors map from the services sentinel markers:
// validation and unsupported kinds are 400, missing objects 404, everything
// else 500. Every response carries an X-Request-ID header that also tags the
// request's log lines.
package api
