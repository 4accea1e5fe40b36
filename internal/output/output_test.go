package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestWriteObject_User(t *testing.T) {
	user := domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}

	var buf bytes.Buffer
	require.NoError(t, WriteObject(&buf, FormatJSON, user))
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, "Ada", fromJSON["name"])
	assert.NotContains(t, fromJSON, "image")

	buf.Reset()
	require.NoError(t, WriteObject(&buf, FormatYAML, user))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, "ada@example.com", fromYAML["email"])

	assert.Error(t, WriteObject(&buf, FormatTable, user))
	assert.Error(t, WriteObject(&buf, Format("xml"), user))
}

func TestWriteFields(t *testing.T) {
	var buf bytes.Buffer
	WriteFields(&buf, []Field{{"Status", "valid"}, {"Expires", ""}})

	out := buf.String()
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "Expires:")
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "expired", FormatRemaining(0))
	assert.Equal(t, "1m30s", FormatRemaining(90*time.Second+200*time.Millisecond))
	assert.Equal(t, "-", FormatTime(time.Time{}))
}
