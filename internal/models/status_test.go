package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobView(t *testing.T) {
	pending := Job{RequestID: "r", Status: StatusPending}
	assert.Equal(t, StatusViewPending, pending.View().Kind)

	done := Job{RequestID: "r", Status: StatusDone, Result: json.RawMessage(`{"days":[]}`)}
	view := done.View()
	assert.Equal(t, StatusViewDone, view.Kind)
	assert.JSONEq(t, `{"days":[]}`, string(view.Result))
}
