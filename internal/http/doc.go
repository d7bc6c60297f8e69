// Package http provides HTTP handlers and middleware for the planner API.
//
// The router exposes the following endpoints:
//   - GET /subjects, POST /subjects, PUT /subjects/{id}, DELETE /subjects/{id}:
//     subject catalog endpoints exchanging the `subjectDTO` payload defined in
//     subject_handler.go. Renames rewrite the denormalized subject name on
//     appointments; deletes are rejected with 409 while appointments still
//     reference the subject.
//   - GET /institutes[?type=institute|school], POST /institutes,
//     GET /institutes/{id}, PUT /institutes/{id}, DELETE /institutes/{id}:
//     institute and school catalog endpoints exchanging the `instituteDTO`
//     payload defined in institute_handler.go. Creating an institute opens its
//     financial account; deleting it removes the account and its ledger.
//   - GET /accounts, GET /accounts/stats, GET /accounts/{id},
//     DELETE /accounts, POST /accounts/{id}/payments,
//     PUT /accounts/{id}/payments/{paymentID},
//     DELETE /accounts/{id}/payments/{paymentID}: financial account endpoints
//     exchanging the `accountDTO` and `paymentDTO` payloads defined in
//     account_handler.go. Payment mutations keep the account total consistent
//     with the ledger.
//   - GET /appointments[?date=YYYY-MM-DD|?week=YYYY-MM-DD], POST /appointments,
//     GET /appointments/{id}, PUT /appointments/{id}, DELETE /appointments/{id},
//     DELETE /appointments: appointment endpoints exchanging the
//     `appointmentDTO` payload defined in appointment_handler.go. The date and
//     week query parameters resolve recurring definitions against the calendar;
//     creation returns 409 with conflict details when the requested time
//     overlaps an existing appointment.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
