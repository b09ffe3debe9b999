package piston

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateHeaders_NoKey(t *testing.T) {
	h := generateHeaders(nil)

	assert.NotContains(t, h, "Authorization")
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "piston-go", h.Get("User-Agent"))
	assert.Len(t, h, 2)
}

func TestGenerateHeaders_WithKey(t *testing.T) {
	for _, key := range []string{"123abc", "", "Bearer xyz"} {
		t.Run(key, func(t *testing.T) {
			h := generateHeaders(&key)

			assert.Equal(t, []string{key}, h.Values("Authorization"))
			assert.Equal(t, "application/json", h.Get("Accept"))
			assert.Equal(t, "piston-go", h.Get("User-Agent"))
			assert.Len(t, h, 3)
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		client  *Client
		wantURL string
		wantKey string
		hasKey  bool
	}{
		{name: "default", client: New(), wantURL: DefaultURL},
		{name: "with url", client: NewWithURL("http://localhost:3000"), wantURL: "http://localhost:3000"},
		{name: "with key", client: NewWithKey("123abc"), wantURL: DefaultURL, wantKey: "123abc", hasKey: true},
		{
			name:    "with url and key",
			client:  NewWithURLAndKey("http://localhost:3000", "123abc"),
			wantURL: "http://localhost:3000",
			wantKey: "123abc",
			hasKey:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantURL, tt.client.URL())

			h := tt.client.Headers()
			if tt.hasKey {
				assert.Equal(t, tt.wantKey, h.Get("Authorization"))
			} else {
				assert.NotContains(t, h, "Authorization")
			}
			assert.Equal(t, "application/json", h.Get("Accept"))
			assert.Equal(t, UserAgent, h.Get("User-Agent"))
		})
	}
}

func TestHeaders_ReturnsCopy(t *testing.T) {
	c := New()

	h := c.Headers()
	h.Set("Authorization", "sneaky")
	h.Set("Accept", "text/plain")

	assert.NotContains(t, c.Headers(), "Authorization")
	assert.Equal(t, "application/json", c.Headers().Get("Accept"))
}

func TestOptions(t *testing.T) {
	hc := &http.Client{}
	c := New(WithHTTPClient(hc), WithHTTPClient(nil), WithLogger(nil))

	assert.Same(t, hc, c.hc)
	assert.NotNil(t, c.logger)
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "400 Bad Request", statusLine(400))
	assert.Equal(t, "429 Too Many Requests", statusLine(429))
	assert.Equal(t, "599 <unknown status code>", statusLine(599))
}
