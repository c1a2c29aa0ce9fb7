package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_Unmarshal(t *testing.T) {
	cases := map[string]bool{
		`1`:      true,
		`0`:      false,
		`true`:   true,
		`false`:  false,
		`"1"`:    true,
		`null`:   false,
		`"True"`: true,
	}
	for input, want := range cases {
		var v struct {
			F Flag `json:"f"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"f":`+input+`}`), &v), input)
		assert.Equal(t, want, bool(v.F), input)
	}
}
