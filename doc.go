// Package auth provides the credential and authorization core of the
// catalog API: password registration and login, bcrypt storage,
// HS256 session tokens, and the guard chain applied to protected routes.
//
// Request flow:
//   - Register and Login go through PasswordHasher and CredentialStore and
//     end with TokenIssuer.Issue.
//   - Protected routes run RouteGuard.Protect(roles...): the authentication
//     middleware resolves the bearer token into an active User and stores it
//     in the request context, then the role middleware checks the declared
//     roles. An empty role list admits any authenticated user.
//   - Handlers read the identity with CurrentUser or CurrentUserField.
//
// Errors:
//   - Every authentication failure is ErrUnauthorized, whatever the cause.
//     The cause is only visible in debug logs.
//   - Role failures, including a missing identity, are ErrForbidden.
package auth
