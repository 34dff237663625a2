package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "hint",
			objectType:  "topic",
			identifier:  "May Fourth Movement (1919)",
			expectedKey: "history:hint:topic:May Fourth Movement (1919)",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "hint",
			objectType:  "topic",
			identifier:  "x",
			paramsKey:   []string{},
			expectedKey: "history:hint:topic:x",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "outline",
			objectType:  "essay",
			identifier:  "x",
			paramsKey:   []string{"political", "v1"},
			expectedKey: "history:outline:essay:x:political_v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Which treaty?", "A) Versailles")
	assert.Len(t, a, 32)
	assert.Equal(t, a, Fingerprint("Which treaty?", "A) Versailles"))
	assert.NotEqual(t, a, Fingerprint("Which treaty?A) Versailles"), "parts are delimited")
}
