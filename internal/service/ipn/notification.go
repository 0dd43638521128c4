package ipn

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
)

// Notification holds the posted IPN fields in the order PayPal sent them.
// PayPal rejects a verification post whose fields are reordered, so the
// order is kept through Encode. A repeated key keeps its first position and
// its last value.
type Notification struct {
	keys   []string
	values map[string]string
}

func NewNotification() *Notification {
	return &Notification{values: make(map[string]string)}
}

// ParseForm decodes an application/x-www-form-urlencoded body.
func ParseForm(body []byte) (*Notification, error) {
	n := NewNotification()
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("ParseForm: key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("ParseForm: value for %q: %w", key, err)
		}
		if key == "" {
			continue
		}
		n.Set(key, value)
	}
	return n, nil
}

// ParseMultipart decodes a multipart/form-data body. File parts are ignored.
func ParseMultipart(r io.Reader, boundary string, maxPartSize int64) (*Notification, error) {
	n := NewNotification()
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		// A wrapped EOF means the body ended before the closing boundary.
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ParseMultipart: %w", err)
		}

		name := part.FormName()
		if name == "" || part.FileName() != "" {
			part.Close()
			continue
		}

		value, err := io.ReadAll(io.LimitReader(part, maxPartSize))
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("ParseMultipart: field %q: %w", name, err)
		}
		n.Set(name, string(value))
	}
}

func (n *Notification) Get(key string) string {
	return n.values[key]
}

func (n *Notification) Has(key string) bool {
	_, ok := n.values[key]
	return ok
}

func (n *Notification) Set(key, value string) {
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
}

func (n *Notification) Len() int {
	return len(n.keys)
}

func (n *Notification) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func (n *Notification) Clone() *Notification {
	c := &Notification{
		keys:   make([]string, len(n.keys)),
		values: make(map[string]string, len(n.values)),
	}
	copy(c.keys, n.keys)
	for k, v := range n.values {
		c.values[k] = v
	}
	return c
}

// Encode renders the fields as a urlencoded body in their original order.
func (n *Notification) Encode() string {
	var b strings.Builder
	for i, k := range n.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(n.values[k]))
	}
	return b.String()
}

func (n *Notification) Map() map[string]string {
	out := make(map[string]string, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}
