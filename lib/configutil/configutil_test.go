package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type nestedConfig struct {
	Value string `json:"value"`
}

type testConfig struct {
	Name   string       `json:"name"`
	Port   int          `json:"port"`
	Token  string       `json:"token" env:"CONFIGUTIL_TEST_TOKEN"`
	Nested nestedConfig `json:"nested"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0666)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {
	t.Run("MergesLocalOverrides", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "app.json5"), `{name: "base", port: 8080, nested: {value: "keep"}}`)
		writeFile(t, filepath.Join(dir, "app.local.json5"), `{port: 9090}`)

		cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, "base", cfg.Name)
		require.Equal(t, 9090, cfg.Port)
		require.Equal(t, "keep", cfg.Nested.Value)
	})

	t.Run("LocalOnly", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "app.local.json5"), `{name: "local"}`)

		cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, "local", cfg.Name)
	})

	t.Run("AllMissing", func(t *testing.T) {
		dir := t.TempDir()
		_, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
		require.True(t, os.IsNotExist(err))
	})
}

func TestReadConfigWithEnv(t *testing.T) {
	t.Run("EnvOverlaysFile", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "app.json5"), `{name: "base"}`)
		t.Setenv("CONFIGUTIL_TEST_TOKEN", "secret")

		cfg, err := ReadConfigWithEnv[testConfig](filepath.Join(dir, "app.json5"))
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, "base", cfg.Name)
		require.Equal(t, "secret", cfg.Token)
	})

	t.Run("MissingFileIsFine", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("CONFIGUTIL_TEST_TOKEN", "secret")

		cfg, err := ReadConfigWithEnv[testConfig](filepath.Join(dir, "app.json5"))
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, "secret", cfg.Token)
	})
}
