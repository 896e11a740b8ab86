package auth

import (
	"net/url"
	"strings"
)

// LoginURL sends the user to the auth service and back to returnTo without
// its query string.
func LoginURL(authBase, returnTo string) string {
	return authBase + "?retUrl=" + url.QueryEscape(stripQuery(returnTo))
}

// BusinessLoginURL is LoginURL for the business sign-in flow.
func BusinessLoginURL(authBase, returnTo string) string {
	return authBase + "?regSource=taasApp&mode=login&retUrl=" + url.QueryEscape(stripQuery(returnTo))
}

// LogoutURL logs the user out and returns them to the root of host.
func LogoutURL(authBase, host string) string {
	return authBase + "/?logout=true&retUrl=" + url.QueryEscape("https://"+host)
}

func stripQuery(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}
