package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	text.DisableColors()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestPathSet_InPlace(t *testing.T) {
	p := writeFile(t, "seo.json", `{"title":"Home"}`)

	_, err := run(t, "path", "set", p, "openGraph.images[1].width", "1200", "--numeric")
	require.NoError(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	images := doc["openGraph"].(map[string]any)["images"].([]any)
	require.Len(t, images, 2)
	assert.Nil(t, images[0])
	assert.Equal(t, float64(1200), images[1].(map[string]any)["width"])
	assert.Equal(t, "Home", doc["title"])
}

func TestPathSet_Stdout(t *testing.T) {
	p := writeFile(t, "doc.json", `{}`)

	out, err := run(t, "path", "set", p, "a.b", "x", "-o", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"b":"x"}}`, out)

	data, _ := os.ReadFile(p)
	assert.Equal(t, `{}`, string(data))
}

func TestPathGet(t *testing.T) {
	p := writeFile(t, "doc.json", `{"a":{"list":[{"v":1}]}}`)

	out, err := run(t, "path", "get", p, "a.list[0].v")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = run(t, "path", "get", p, "a.missing")
	assert.Error(t, err)
}

func TestPathFlatten(t *testing.T) {
	p := writeFile(t, "doc.json", `{"b":1,"a":{"c":"x"}}`)

	out, err := run(t, "path", "flatten", p)
	require.NoError(t, err)
	assert.Contains(t, out, "a.c")
	assert.Contains(t, out, `"x"`)
	assert.Less(t, bytes.Index([]byte(out), []byte("a.c")), bytes.Index([]byte(out), []byte(" b ")))
}

func TestGeoCheck(t *testing.T) {
	good := writeFile(t, "good.yaml", `
countries:
  - {id: es, name: Spain, code: ES}
states:
  - {id: bi, name: Bizkaia, country_id: es}
cities:
  - {id: bio, name: Bilbao, state_id: bi}
`)
	out, err := run(t, "geo", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "1 countries, 1 states, 1 cities OK")

	bad := writeFile(t, "bad.yaml", `
states:
  - {id: gj, name: Gujarat, country_id: in}
`)
	out, err = run(t, "geo", "check", bad)
	assert.ErrorIs(t, err, errOrphans)
	assert.Contains(t, out, "gj")
	assert.Contains(t, out, `unknown country "in"`)
}
