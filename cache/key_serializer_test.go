package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{
			name:   "no args",
			method: "FetchCharacters",
			args:   []any{},
			want:   "FetchCharacters",
		},
		{
			name:   "page number",
			method: "FetchCharacters",
			args:   []any{3},
			want:   joinWithSeparator("FetchCharacters", "3"),
		},
		{
			name:   "multiple basic types",
			method: "Get",
			args:   []any{1, "rick", true, int64(9)},
			want:   joinWithSeparator("Get", "1", "rick", "true", "9"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serializer.SerializeKey(tt.method, tt.args...))
		})
	}
}

func TestDefaultKeySerializer_NilAndOtherTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	assert.Equal(t, joinWithSeparator("M", "nil"), serializer.SerializeKey("M", nil))
	assert.Equal(t, joinWithSeparator("M", "int32:7"), serializer.SerializeKey("M", int32(7)))
	assert.Equal(t, joinWithSeparator("M", "float64:2.5"), serializer.SerializeKey("M", 2.5))
}

func TestDefaultKeySerializer_PrefixInvalidation(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	for page := 1; page <= 3; page++ {
		key := serializer.SerializeKey("FetchCharacters", page)
		assert.True(t, strings.HasPrefix(key, "FetchCharacters"), key)
	}
}

func TestDefaultKeySerializer_Stability(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	args := []any{1, "hello", true}

	assert.Equal(t,
		serializer.SerializeKey("FetchCharacters", args...),
		serializer.SerializeKey("FetchCharacters", args...),
	)
}

func BenchmarkDefaultKeySerializer(b *testing.B) {
	serializer := NewDefaultKeySerializer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serializer.SerializeKey("FetchCharacters", i)
	}
}
