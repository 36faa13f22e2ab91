package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapped(t *testing.T) {
	r := &Result{Names: map[string]string{"uTex0": "_uuTex0", "uBlank": ""}}
	assert.Equal(t, "_uuTex0", r.Mapped("uTex0"))
	assert.Equal(t, "uBlank", r.Mapped("uBlank"))
	assert.Equal(t, "aVtxPos", r.Mapped("aVtxPos"))
}
