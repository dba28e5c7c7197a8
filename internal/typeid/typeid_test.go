package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		prefix string
		gen    func() string
	}{
		{PrefixProject, NewProjectID},
		{PrefixSnapshot, NewSnapshotID},
		{PrefixSession, NewSessionID},
		{PrefixCut, NewCutID},
		{PrefixKeyframe, NewKeyframeID},
		{PrefixExport, NewExportID},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			id := tt.gen()
			assert.True(t, strings.HasPrefix(id, tt.prefix+"_"))
			require.NoError(t, Validate(id, tt.prefix))
		})
	}
}

func TestValidateRejects(t *testing.T) {
	assert.Error(t, Validate("not-an-id", PrefixProject))
	assert.Error(t, Validate(NewCutID(), PrefixProject))
}
