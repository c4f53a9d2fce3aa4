package viper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSection struct {
	Parallelism int    `mapstructure:"parallelism"`
	Prefix      string `mapstructure:"prefix"`
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "marshal.yaml", "marshal:\n  parallelism: 4\n  prefix: out_\n")

	c := New("")
	require.NoError(t, c.LoadFile(path))
	assert.True(t, c.IsSet("marshal.parallelism"))

	var sec testSection
	require.NoError(t, c.UnmarshalKey("marshal", &sec))
	assert.Equal(t, 4, sec.Parallelism)
	assert.Equal(t, "out_", sec.Prefix)
}

func TestLoadJSONWithDefault(t *testing.T) {
	path := writeFile(t, "marshal.json", `{"marshal": {"prefix": "p"}}`)

	c := New("")
	c.SetDefault("marshal.parallelism", 2)
	require.NoError(t, c.LoadFile(path))

	var sec testSection
	require.NoError(t, c.UnmarshalKey("marshal", &sec))
	assert.Equal(t, 2, sec.Parallelism)
	assert.Equal(t, "p", sec.Prefix)
}

func TestUnmarshalKeyWithEnvAndAbsentSection(t *testing.T) {
	t.Setenv("MGTEST_MARSHAL_PARALLELISM", "6")
	path := writeFile(t, "marshal.toml", "[marshal]\nprefix = \"t_\"\n")

	c := New("MGTEST")
	c.SetDefault("marshal.parallelism", 2)
	require.NoError(t, c.LoadFile(path))

	var sec testSection
	require.NoError(t, c.UnmarshalKey("marshal", &sec))
	assert.Equal(t, 6, sec.Parallelism)
	assert.Equal(t, "t_", sec.Prefix)

	untouched := testSection{Parallelism: 9}
	require.NoError(t, c.UnmarshalKey("absent", &untouched))
	assert.Equal(t, 9, untouched.Parallelism)
}

func TestLoadFileErrors(t *testing.T) {
	c := New("")
	assert.Error(t, c.LoadFile(writeFile(t, "marshal.ini", "x=1")))
	assert.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MGTEST_MARSHAL_PARALLELISM", "8")

	c := New("MGTEST")
	assert.Equal(t, 8, c.v.GetInt("marshal.parallelism"))
}
