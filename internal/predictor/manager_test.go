package predictor

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/models"
)

func managerLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestManagerActivateAndGet(t *testing.T) {
	seq, validation := trainedSequenceModel(t)
	artifact, err := BuildArtifact(seq, "v20240301-000000", 0.61, 0.52, 400)
	require.NoError(t, err)

	m := NewManager(managerLogger())
	require.NoError(t, m.Activate(artifact))

	p, meta, ok := m.Get(models.ModelSequence)
	require.True(t, ok)
	assert.Equal(t, "v20240301-000000", meta.Version)
	assert.Equal(t, "v20240301-000000", m.Version(models.ModelSequence))
	assert.Equal(t, []string{models.ModelSequence}, m.ActiveFamilies())

	prob, err := p.Predict(validation.X[0])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, prob, 0.0)
	assert.LessOrEqual(t, prob, 1.0)
}

func TestManagerExcludesFailedVersionForProcessLifetime(t *testing.T) {
	seq, _ := trainedSequenceModel(t)
	artifact, err := BuildArtifact(seq, "v20240301-000000", 0.61, 0.52, 400)
	require.NoError(t, err)

	// Corrupt the payload so the first activation fails
	good := append([]byte(nil), artifact.Parameters...)
	artifact.Parameters[10] ^= 0xff

	m := NewManager(managerLogger())
	require.Error(t, m.Activate(artifact))

	// Restoring the bytes does not rehabilitate the version
	artifact.Parameters = good
	err = m.Activate(artifact)
	assert.ErrorIs(t, err, models.ErrModelLoad)

	_, _, ok := m.Get(models.ModelSequence)
	assert.False(t, ok)
}

func TestManagerActivateLatestSkipsBrokenArtifacts(t *testing.T) {
	seq, _ := trainedSequenceModel(t)
	dir := t.TempDir()

	older, err := BuildArtifact(seq, "v20240201-000000", 0.58, 0.5, 300)
	require.NoError(t, err)
	newer, err := BuildArtifact(seq, "v20240301-000000", 0.61, 0.52, 400)
	require.NoError(t, err)
	newer.Metadata.TrainedAt = older.Metadata.TrainedAt.Add(time.Hour)
	newer.Metadata.Checksum = "deadbeef" // newest artifact is corrupt

	_, err = SaveArtifact(dir, older)
	require.NoError(t, err)
	_, err = SaveArtifact(dir, newer)
	require.NoError(t, err)

	m := NewManager(managerLogger())
	activated, err := m.ActivateLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, activated)
	assert.Equal(t, "v20240201-000000", m.Version(models.ModelSequence), "falls back past the corrupt version")
}

func TestManagerActivateLatestEmptyDir(t *testing.T) {
	m := NewManager(managerLogger())
	_, err := m.ActivateLatest(t.TempDir())
	assert.ErrorIs(t, err, models.ErrNoModelsAvailable)
}

func TestManagerDeactivate(t *testing.T) {
	seq, _ := trainedSequenceModel(t)
	artifact, err := BuildArtifact(seq, "v20240301-000000", 0.61, 0.52, 400)
	require.NoError(t, err)

	m := NewManager(managerLogger())
	require.NoError(t, m.Activate(artifact))
	m.Deactivate(models.ModelSequence)

	_, _, ok := m.Get(models.ModelSequence)
	assert.False(t, ok)
	assert.Empty(t, m.ActiveFamilies())
}
