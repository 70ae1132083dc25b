package rpcjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCodec(t *testing.T) {
	c := Codec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(payload{Name: "oreum", Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"oreum","count":2}`, string(b))
	assert.Equal(t, len(b), Size(payload{Name: "oreum", Count: 2}))

	var got payload
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, payload{Name: "oreum", Count: 2}, got)

	assert.Error(t, c.Unmarshal([]byte(`{"nmae":"typo"}`), &got))
	assert.NoError(t, c.Unmarshal(nil, &got))
	assert.Zero(t, Size(nil))
}
