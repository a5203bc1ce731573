package uniforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
	"uniforms": {
		"speed": ["f32", 1.5],
		"loops": ["u32", 3],
		"invert": ["bool", true]
	},
	"push constants": {
		"offset": ["f64", 0.25]
	}
}`

func TestParseConfigPreservesOrder(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Uniforms, 3)
	assert.Equal(t, "speed", cfg.Uniforms[0].Name())
	assert.Equal(t, float32(1.5), cfg.Uniforms[0].F32())
	assert.Equal(t, "loops", cfg.Uniforms[1].Name())
	assert.Equal(t, uint32(3), cfg.Uniforms[1].U32())
	assert.Equal(t, "invert", cfg.Uniforms[2].Name())
	assert.True(t, cfg.Uniforms[2].Bool())
	assert.Equal(t, []int{0, 4, 8}, Offsets(cfg.Uniforms))

	require.Len(t, cfg.PushConstants, 1)
	assert.Equal(t, "offset", cfg.PushConstants[0].Name())
	assert.Equal(t, 0.25, cfg.PushConstants[0].F64())
}

func TestParseConfigDropsUnknownTags(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"uniforms": {
			"a": ["f32", 1],
			"b": ["vec3", 2],
			"c": ["i64", -3]
		}
	}`))
	require.NoError(t, err)
	require.Len(t, cfg.Uniforms, 2)
	assert.Equal(t, "a", cfg.Uniforms[0].Name())
	assert.Equal(t, "c", cfg.Uniforms[1].Name())
	assert.Equal(t, int64(-3), cfg.Uniforms[1].I64())
}

func TestParseConfigEmptySections(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Uniforms)
	assert.Empty(t, cfg.PushConstants)
}

func TestParseConfigRejectsMalformedEntry(t *testing.T) {
	_, err := ParseConfig([]byte(`{"uniforms": {"a": ["f32"]}}`))
	assert.Error(t, err)
}

func TestParseConfigIgnoresUnknownSections(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"comment": "shader settings",
		"uniforms": {"a": ["u64", 17]}
	}`))
	require.NoError(t, err)
	require.Len(t, cfg.Uniforms, 1)
	assert.Equal(t, uint64(17), cfg.Uniforms[0].U64())
}
