package model

import (
	"encoding/json"
	"testing"

	"github.com/benbeisheim/checkers-backend/internal/engine"
	"github.com/couchbaselabs/go.assert"
)

func TestClientPlayerJSON(t *testing.T) {
	data, err := json.Marshal(ClientPlayer{ID: humanID, Side: engine.Light})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	assert.Equals(t, string(data), `{"id":"player-1","side":"light"}`)
}
