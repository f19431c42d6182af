// Package api contains the HTTP handlers, request/response models and error
// mapping for the public REST surface. Handlers stay thin: they decode and
// validate payloads, call into the service layer and translate the result
// into the JSON envelopes clients expect. All business rules live below this
// package.
package api
