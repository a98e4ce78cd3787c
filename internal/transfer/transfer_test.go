package transfer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvinay/custom-search-shortcuts/internal/store"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

func sample() types.Snapshot {
	return types.Snapshot{
		Templates: []types.Template{{ID: "t1", Name: "Jira", URL: "https://{{HOST}}/browse/%s"}},
		Variables: []types.Variable{{Name: "HOST", DefaultValue: "jira.example.com"}},
		Environments: []types.Environment{
			{ID: "e1", Name: "DEV", Values: []types.EnvValue{{Key: "HOST", Value: "jira.dev"}}},
		},
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, sample(), format))

			got, err := Import(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, sample(), got)
		})
	}
}

func TestExport_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, types.Snapshot{}, FormatJSON))
	assert.JSONEq(t, `{"templates":[],"variables":[],"environments":[]}`, buf.String())
}

func TestImport(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		input   string
		wantErr bool
		check   func(t *testing.T, snap types.Snapshot)
	}{
		{
			name:   "legacy urls key",
			format: FormatJSON,
			input:  `{"urls":[{"id":"a","name":"A","url":"https://a/%s"}],"variables":[],"environments":[]}`,
			check: func(t *testing.T, snap types.Snapshot) {
				require.Len(t, snap.Templates, 1)
				assert.Equal(t, "a", snap.Templates[0].ID)
			},
		},
		{
			name:   "comments and trailing commas",
			format: FormatJSON,
			input: `{
				// saved searches
				"templates": [],
				"variables": [{"name": "host", "defaultValue": "x"},],
				"environments": [],
			}`,
			check: func(t *testing.T, snap types.Snapshot) {
				assert.Equal(t, "HOST", snap.Variables[0].Name)
			},
		},
		{
			name:   "names normalized",
			format: FormatYAML,
			input: `templates: []
variables:
  - name: " host "
    defaultValue: d
environments:
  - id: e1
    name: dev
    values:
      - key: host
        value: h
`,
			check: func(t *testing.T, snap types.Snapshot) {
				assert.Equal(t, "HOST", snap.Variables[0].Name)
				assert.Equal(t, "DEV", snap.Environments[0].Name)
				assert.Equal(t, "HOST", snap.Environments[0].Values[0].Key)
			},
		},
		{
			name:    "missing environments",
			format:  FormatJSON,
			input:   `{"templates":[],"variables":[]}`,
			wantErr: true,
		},
		{
			name:    "collection is not an array",
			format:  FormatJSON,
			input:   `{"templates":{},"variables":[],"environments":[]}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			format:  FormatJSON,
			input:   `[1,2,3]`,
			wantErr: true,
		},
		{
			name:    "broken yaml",
			format:  FormatYAML,
			input:   "templates: [",
			wantErr: true,
		},
		{
			name:    "variables collide after normalization",
			format:  FormatJSON,
			input:   `{"templates":[],"variables":[{"name":"host"},{"name":"HOST"}],"environments":[]}`,
			wantErr: true,
		},
		{
			name:    "duplicate environment id",
			format:  FormatJSON,
			input:   `{"templates":[],"variables":[],"environments":[{"id":"e1","name":"dev","values":[]},{"id":"e1","name":"prod","values":[]}]}`,
			wantErr: true,
		},
		{
			name:    "environment names collide after normalization",
			format:  FormatJSON,
			input:   `{"templates":[],"variables":[],"environments":[{"id":"e1","name":"dev","values":[]},{"id":"e2","name":" DEV ","values":[]}]}`,
			wantErr: true,
		},
		{
			name:    "duplicate template id",
			format:  FormatJSON,
			input:   `{"templates":[{"id":"a","name":"A","url":"https://a"},{"id":"a","name":"B","url":"https://b"}],"variables":[],"environments":[]}`,
			wantErr: true,
		},
		{
			name:   "environment sets a key twice",
			format: FormatYAML,
			input: `templates: []
variables: []
environments:
  - id: e1
    name: dev
    values:
      - key: host
        value: a
      - key: HOST
        value: b
`,
			wantErr: true,
		},
		{
			name:    "template id with branch prefix",
			format:  FormatJSON,
			input:   `{"templates":[{"id":"branch:x","name":"X","url":"https://x"}],"variables":[],"environments":[]}`,
			wantErr: true,
		},
		{
			name:    "environment id with leaf separator",
			format:  FormatJSON,
			input:   `{"templates":[],"variables":[],"environments":[{"id":"a|b","name":"dev","values":[]}]}`,
			wantErr: true,
		},
		{
			name:   "template id with leaf separator",
			format: FormatJSON,
			input:  `{"templates":[{"id":"a|b","name":"AB","url":"https://ab/%s"}],"variables":[],"environments":[]}`,
			check: func(t *testing.T, snap types.Snapshot) {
				require.Len(t, snap.Templates, 1)
				assert.Equal(t, "a|b", snap.Templates[0].ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Import(strings.NewReader(tt.input), tt.format)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			tt.check(t, snap)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(types.Snapshot{Templates: []types.Template{{ID: "old"}}})

	var changes []types.Change
	st.OnChange(func(c types.Change) { changes = append(changes, c) })

	require.NoError(t, Apply(ctx, st, sample()))

	got, err := st.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
	require.Len(t, changes, 1)
	assert.ElementsMatch(t, types.AllKeys, changes[0].Keys)
}

func TestQuery(t *testing.T) {
	out, err := Query(sample(), "templates[].name")
	require.NoError(t, err)
	assert.JSONEq(t, `["Jira"]`, out)

	out, err = Query(sample(), "environments[?name=='PROD'] | [0]")
	require.NoError(t, err)
	assert.Equal(t, "null", out)

	_, err = Query(sample(), "templates[")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("backup.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("a.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("a.jsonc"))
}
