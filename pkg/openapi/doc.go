// Package openapi describes the submissions the order and contact forms relay
// to the form backend as an OpenAPI 3 document. Each catalog service gets one
// operation whose multipart request body lists the fields that service can
// send. Documents are built and validated with kin-openapi.
package openapi
