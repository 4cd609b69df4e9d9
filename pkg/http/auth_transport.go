package http

import "net/http"

type authTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends the token as a bearer Authorization header
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			token:     token,
			transport: rt,
		}
	})
}

type queryKeyTransport struct {
	param     string
	key       string
	transport http.RoundTripper
}

func (t *queryKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.key != "" {
		q := reqCopy.URL.Query()
		q.Set(t.param, t.key)
		reqCopy.URL.RawQuery = q.Encode()
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAPIKeyQuery appends the key as a query-string parameter (e.g. Google's ?key=)
func WithAPIKeyQuery(param, key string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &queryKeyTransport{
			param:     param,
			key:       key,
			transport: rt,
		}
	})
}

type basicAuthTransport struct {
	username  string
	password  string
	transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	reqCopy.SetBasicAuth(t.username, t.password)
	return t.transport.RoundTrip(reqCopy)
}

// WithBasicAuth authenticates every request with HTTP basic auth (Twilio account SID + token)
func WithBasicAuth(username, password string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &basicAuthTransport{
			username:  username,
			password:  password,
			transport: rt,
		}
	})
}
