/*
Package authsdk is a client for the session auth service, and the home of its
wire types.

Create an SDKClient for the public endpoints and log in to obtain a Session:

	client := authsdk.NewSDKClient("https://auth.example.com")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw123456",
	})

	session, err := client.Login(ctx, "alice", "pw123456")

A Session carries the access and refresh tokens. Its methods refresh the
access token shortly before it expires, so callers never do it by hand:

	me, err := session.Me(ctx)

	// Ends the server-side session and revokes the refresh token.
	err = session.Logout(ctx)

# Errors

Non-2xx responses are returned as *APIError. Compare with errors.Is against
the predefined values, which match on the error code alone:

	if errors.Is(err, authsdk.ErrInvalidCredentials) { ... }

An *APIError with status 503 is transient and safe to retry.

Sessions are safe for concurrent use.
*/
package authsdk
