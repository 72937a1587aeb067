// Package http provides HTTP handlers and middleware for the artist booking API.
//
// The router exposes the following endpoints:
//   - GET /healthz and GET /metrics: liveness and Prometheus exposition.
//   - GET/POST /categories, GET/PATCH/DELETE /categories/{id}: category management
//     exchanging the `categoryDTO` payload. Listing accepts `type`, `page` and `limit`.
//   - GET/POST /artists, GET/PATCH/DELETE /artists/{id}: the artist directory. Deleting
//     an artist removes its slots and moments.
//   - GET/POST /availability, GET/PATCH/DELETE /availability/{id}: availability slots.
//     Overlapping slots for one artist are rejected with 409.
//   - GET /availability/artist/{artistId}: the artist's free slots, paginated.
//   - GET /availability/artist/{artistId}/booked and .../concluded: moments as absolute
//     instants, all of them or only those already over.
//   - GET/POST /moments, GET/PATCH/DELETE /moments/{id}: bookings. Writes answer with
//     the moment plus `warnings` naming overlapping moments of the same artist.
//
// Paginated listings require positive `page` and `limit` query parameters and answer
// with {"data","total","page","limit","total_pages","last_page"}.
//
// RequireRole guards every POST, PATCH, PUT and DELETE with a bearer token whose role
// is super_admin or admin. Failures use the `errorResponse` payload defined in
// responder.go; validation failures carry a per-field `errors` map.
package http
