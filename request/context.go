package request

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type Context struct {
	request        *http.Request
	responseWriter http.ResponseWriter

	endpoint string
	clientIp string
}

func NewContext(request *http.Request, response http.ResponseWriter, endpoint string) *Context {
	return &Context{
		request:        request,
		responseWriter: response,
		endpoint:       endpoint,
	}
}

func (c *Context) Request() *http.Request {
	return c.request
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.responseWriter
}

func (c *Context) SetResponseWriter(writer http.ResponseWriter) {
	c.responseWriter = writer
}

func (c *Context) Endpoint() string {
	return c.endpoint
}

// ClientIP resolves the caller identity used for rate limiting.
// The first X-Forwarded-For hop wins, then the remote address.
func (c *Context) ClientIP() string {
	if c.clientIp != "" {
		return c.clientIp
	}

	forwarded := c.request.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		c.clientIp = strings.TrimSpace(parts[0])
		return c.clientIp
	}

	host, _, err := net.SplitHostPort(c.request.RemoteAddr)
	if err != nil {
		c.clientIp = c.request.RemoteAddr
		return c.clientIp
	}
	c.clientIp = host
	return c.clientIp
}

func (c *Context) Context() context.Context {
	return c.request.Context()
}

func (c *Context) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}
