// Package interfaces documents the core abstractions used throughout the application.
//
// Interfaces are declared by their consumers. This package only holds the
// compile-time checks tying them to the concrete types in checks.go.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: Book persistence behind the /books routes (internal/http/books.go),
//     implemented by books.Repository (internal/database/books/repository.go)
//
// ## Audit Interfaces
//
//   - AuditLogger: Records successful book mutations (internal/http/books.go)
//   - AuditEventCleaner: Deletes expired audit events (internal/tasks/cleanup_audit.go)
//   - CleanupReporter: Records each retention run (internal/tasks/cleanup_audit.go)
//
// All three are implemented by audit.Service (internal/audit/service.go).
//
// ## Background Work Interfaces
//
//   - TaskEnqueuer: Hands cleanup tasks to the queue (internal/scheduler/audit_cleanup.go),
//     implemented by tasks.Client (internal/tasks/client.go)
//
// # Adding a New Book Store
//
// To back the API with another storage engine:
//
//  1. Implement http.BookStore. Return errors wrapping database.ErrNotFound for
//     a missing ISBN and database.ErrConstraintViolation for a duplicate one,
//     so the HTTP layer maps them to 404 and 409.
//  2. Add a compile-time check to checks.go.
//  3. Pass the store as RouterConfig.BookStore in internal/entrypoint.
//
// # Adding a New Background Task
//
//  1. Define a task type with a Config() backlite.QueueConfig method in internal/tasks.
//  2. Provide a New<Task>Queue constructor returning backlite.NewQueue(processor).
//  3. Register the queue with tasks.Client in entrypoint.Build.
//  4. Enqueue it with tasks.Client.Enqueue, from a scheduler or a handler.
//
// # Testing with Interfaces
//
// Handlers are tested with hand-written fakes that implement the consumer
// interface directly, for example mockBookStore in internal/http/books_test.go.
package interfaces
