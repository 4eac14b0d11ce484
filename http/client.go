package http

// Client creates calls that share a transport, a base URL and a set of
// default headers. It holds no connections; every call it creates owns its
// own handle.
type Client struct {
	transport Transport
	baseURL   string
	headers   *Params
	follow    bool
	sink      TraceSink
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new client over t with the given options.
//
// Example:
//
//	client := http.NewClient(engine,
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
//	call, err := client.NewCall("/users", http.CallConfig{Method: http.MethodGet})
func NewClient(t Transport, options ...ClientOption) *Client {
	client := &Client{
		transport: t,
		headers:   NewParams(),
		follow:    true,
	}

	// Apply options
	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the base URL for all calls made by this client.
// The base URL is prepended to the path given to NewCall as is.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeader adds a default header to all calls made by this client.
// Headers set on an individual call override these defaults.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithHeaders adds every entry of p as a default header, in order.
func WithHeaders(p *Params) ClientOption {
	return func(c *Client) {
		p.Each(c.headers.Set)
	}
}

// WithFollowRedirects sets the initial follow-redirects flag of new calls.
func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.follow = follow
	}
}

// WithTraceSink installs sink on every new call.
func WithTraceSink(sink TraceSink) ClientOption {
	return func(c *Client) {
		c.sink = sink
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// NewCall creates a call for baseURL+path with the client's defaults
// applied.
func (c *Client) NewCall(path string, cfg CallConfig) (*Call, error) {
	call, err := NewCall(c.transport, c.baseURL, path, cfg)
	if err != nil {
		return nil, err
	}
	c.headers.Each(call.AddHeader)
	call.SetFollowRedirects(c.follow)
	if c.sink != nil {
		call.SetTraceSink(c.sink)
	}
	return call, nil
}

// Get is a convenience method for creating GET calls.
func (c *Client) Get(path string) (*Call, error) {
	return c.NewCall(path, CallConfig{Method: MethodGet})
}

// Head is a convenience method for creating HEAD calls.
func (c *Client) Head(path string) (*Call, error) {
	return c.NewCall(path, CallConfig{Method: MethodHead})
}

// Post is a convenience method for creating POST calls with a body.
func (c *Client) Post(path string, body []byte) (*Call, error) {
	return c.NewCall(path, CallConfig{Method: MethodPost, Body: body})
}

// Put is a convenience method for creating PUT calls with a body.
func (c *Client) Put(path string, body []byte) (*Call, error) {
	return c.NewCall(path, CallConfig{Method: MethodPut, Body: body})
}

// Delete is a convenience method for creating DELETE calls. body may be nil.
func (c *Client) Delete(path string, body []byte) (*Call, error) {
	return c.NewCall(path, CallConfig{Method: MethodDelete, Body: body})
}
