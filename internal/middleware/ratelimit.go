package middleware

import (
	"net"
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

// defaultRateLimit bounds API calls per client. The daemon serves one
// browser, so this is loose; it exists to stop a runaway extension from
// hammering the LLM providers through the capture endpoint.
const defaultRateLimit = "30-M"

// RateLimit returns ulule-based rate limiting middleware with an
// in-memory store, keyed by client IP. rateStr uses the limiter
// "<count>-<period>" format.
func RateLimit(rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = defaultRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(memorystore.NewStore(), rate)
	keyGetter := func(r *http.Request) string {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
