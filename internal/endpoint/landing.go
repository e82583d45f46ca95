package endpoint

import _ "embed"

// LandingPage is the static HTML served on GET /.
//
//go:embed static/index.html
var LandingPage []byte

// Health is the body returned by the health check.
var Health = map[string]string{"status": "healthy"}
