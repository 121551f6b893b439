package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecName(t *testing.T) {
	// Must match Connect's JSON codec name to serve application/json.
	assert.Equal(t, "json", Codec{}.Name())
}

func TestCodecUsesWireNames(t *testing.T) {
	data, err := Codec{}.Marshal(&SettleRequest{GroupID: "g1", From: "Bob", To: "Alice", Amount: 12.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"group_id":"g1","from":"Bob","to":"Alice","amount":12.5}`, string(data))
}

func TestCodecEmptyBody(t *testing.T) {
	var req ListGroupsRequest
	assert.NoError(t, Codec{}.Unmarshal(nil, &req))
}

func TestCodecRejectsMalformed(t *testing.T) {
	var req GetGroupRequest
	assert.Error(t, Codec{}.Unmarshal([]byte(`{"group_id":`), &req))
}

func TestToggleSimplifyOptional(t *testing.T) {
	var req ToggleSimplifyRequest
	require.NoError(t, Codec{}.Unmarshal([]byte(`{"group_id":"g1"}`), &req))
	assert.Nil(t, req.Simplify)

	require.NoError(t, Codec{}.Unmarshal([]byte(`{"group_id":"g1","simplify":true}`), &req))
	require.NotNil(t, req.Simplify)
	assert.True(t, *req.Simplify)
}
