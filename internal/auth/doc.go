// Package auth is the request-security pipeline of the portal: password
// hashing and policy, server-side sessions, CSRF tokens, the session gate and
// the login/registration flow.
//
// # Pipeline
//
// Every request except /health runs through three gin middlewares in a fixed order:
//
//	sessions.SessionLoadSave()  // load the scs session, commit it before the response
//	gate.Handler()              // admit authenticated requests and /login, /register
//	csrf.Middleware()           // verify csrfToken / X-CSRF-Token on unsafe methods
//
// Each stage may abort the chain. The gate never writes to the session.
//
// # Configuration
//
//	SESSION_TIMEOUT=30m          # inactivity timeout
//	AUTH_SESSION_LIFETIME=24h    # absolute session lifetime
//	AUTH_BCRYPT_COST=12          # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true     # HTTPS-only cookies
//	CSRF_ENABLED=true            # false accepts every request
//	PASSWORD_MIN_LENGTH=8        # plus PASSWORD_REQUIRE_{UPPERCASE,LOWERCASE,DIGIT,SPECIAL}
//
// # Usage
//
// Extract the principal in handlers behind the gate:
//
//	id := auth.GetPrincipalID(c)
//	role := auth.GetRole(c)
package auth
