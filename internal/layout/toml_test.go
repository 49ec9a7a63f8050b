package layout

import (
	"testing"

	"estatedash/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportTOML(t *testing.T) {
	src := Default(Advanced)
	data, err := ExportTOML(src)
	require.NoError(t, err)
	assert.Contains(t, string(data), `layoutType = 'advanced'`)

	got, err := DecodeTOML(data)
	require.NoError(t, err)
	assert.Equal(t, src.Type, got.Type)
	require.Len(t, got.Panels, len(src.Panels))
	for i := range src.Panels {
		assert.Equal(t, src.Panels[i].ID, got.Panels[i].ID)
		assert.Equal(t, *src.Panels[i].Rect, *got.Panels[i].Rect)
	}
}

func TestDecodeTOML_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not toml", `layoutType = `},
		{"unknown key", "name = 'x'\nlayoutType = 'single'\ncolour = 'red'\n"},
		{"unknown type", "name = 'x'\nlayoutType = 'hexa'\n"},
		{"duplicate panels", `
name = 'x'
layoutType = 'advanced'
[[panels]]
id = 'p'
contentType = 'map'
[[panels]]
id = 'p'
contentType = 'chart'
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTOML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestModelImport(t *testing.T) {
	store := kv.NewMemory()
	m := newTestModel(t, store, Dual)
	doc := `
id = 'shared-elsewhere'
name = 'Shared'
layoutType = 'tri'

[[panels]]
id = 'm'
contentType = 'map'
title = 'Map'

[[panels]]
id = 'c'
contentType = 'chart'
title = 'Chart'
[panels.initialState]
bucket = 50000
`
	cfg, err := m.Import([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "layout-1", cfg.ID, "imports get a fresh id")
	assert.NotNil(t, cfg.CreatedAt)
	assert.EqualValues(t, 50000, cfg.Panels[1].InitialState["bucket"])

	require.NoError(t, m.Select(cfg.ID))
	assert.Equal(t, Tri, m.Current().Type)
	assert.Len(t, NewModel(store, Dual).Layouts(), len(Defaults())+1)
}
