package present_test

import (
	"context"
	"os"
	"testing"

	"github.com/alkime/intake/internal/present"
	"github.com/alkime/intake/internal/workdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_PrintCommand(t *testing.T) {
	t.Parallel()

	dir, err := workdir.Open(t.TempDir(), "visit")
	require.NoError(t, err)

	exp := present.NewExporter(dir, "lp -d front-desk")

	cmd, path, err := exp.PrintCommand(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, dir.File(workdir.FormFile), path)
	assert.Equal(t, []string{"lp", "-d", "front-desk", path}, cmd.Args)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, form, string(data))
}

func TestExporter_NoPrintCommand(t *testing.T) {
	t.Parallel()

	dir, err := workdir.Open(t.TempDir(), "visit")
	require.NoError(t, err)

	cmd, path, err := present.NewExporter(dir, "  ").PrintCommand(context.Background(), form)
	require.Error(t, err)
	assert.Nil(t, cmd)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "the form is still saved")
}
