// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive their dependencies through constructor injection and apply
// transactional boundaries when an operation spans multiple statements (the
// conversation delete/restore state machine). They translate store errors
// into application-level sentinels; the API layer maps those sentinels to
// HTTP status codes.
package service
