package ipn

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm(t *testing.T) {
	n, err := ParseForm([]byte("txn_type=web_accept&custom=7&item_name=Hosting+%26+Support&payer_email=a%40b.com&&=ignored&flag"))
	require.NoError(t, err)

	assert.Equal(t, []string{"txn_type", "custom", "item_name", "payer_email", "flag"}, n.Keys())
	assert.Equal(t, "Hosting & Support", n.Get("item_name"))
	assert.Equal(t, "a@b.com", n.Get("payer_email"))
	assert.True(t, n.Has("flag"))
	assert.Empty(t, n.Get("flag"))
	assert.False(t, n.Has("missing"))
}

func TestParseForm_RepeatedKeyKeepsFirstPositionAndLastValue(t *testing.T) {
	n, err := ParseForm([]byte("a=1&b=2&a=3"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, n.Keys())
	assert.Equal(t, "3", n.Get("a"))
	assert.Equal(t, "a=3&b=2", n.Encode())
}

func TestParseForm_BadEscape(t *testing.T) {
	_, err := ParseForm([]byte("custom=%zz"))
	assert.Error(t, err)
}

func TestParseMultipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("txn_type", "subscr_payment"))
	require.NoError(t, w.WriteField("custom", "12"))
	fw, err := w.CreateFormFile("attachment", "a.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("file content"))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("memo", "0123456789"))
	require.NoError(t, w.Close())

	n, err := ParseMultipart(&buf, w.Boundary(), 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"txn_type", "custom", "memo"}, n.Keys())
	assert.Equal(t, "subs", n.Get("txn_type"), "values are capped at the part size")
	assert.Equal(t, "12", n.Get("custom"))
}

func TestParseMultipart_BadBoundary(t *testing.T) {
	_, err := ParseMultipart(bytes.NewBufferString("not multipart"), "xyz", 1024)
	assert.Error(t, err)
}

func TestNotification_EncodeRoundTripsOrder(t *testing.T) {
	body := "z=1&mc_gross=10.00&custom=5&address_street=1+Main+St%0D%0AApt+2"
	n, err := ParseForm([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, body, n.Encode())
}

func TestNotification_CloneIsIndependent(t *testing.T) {
	n := notification("a", "1", "b", "2")
	c := n.Clone()
	c.Set("a", "changed")
	c.Set("cmd", "_notify-validate")

	assert.Equal(t, "1", n.Get("a"))
	assert.Equal(t, []string{"a", "b"}, n.Keys())
	assert.Equal(t, []string{"a", "b", "cmd"}, c.Keys())
}

func TestNotification_SetOverwritesInPlace(t *testing.T) {
	n := notification("txn_type", "WEB_ACCEPT", "custom", "1")
	n.Set("txn_type", "web_accept")

	assert.Equal(t, []string{"txn_type", "custom"}, n.Keys())
	assert.Equal(t, map[string]string{"txn_type": "web_accept", "custom": "1"}, n.Map())
	assert.Equal(t, 2, n.Len())
}
