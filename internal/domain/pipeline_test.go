package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPipeline() *Pipeline {
	p := &Pipeline{ID: "p-1", Name: DefaultPipelineName, UserID: "u-1"}
	for i, name := range DefaultStageNames {
		p.Stages = append(p.Stages, &PipelineStage{
			ID:         name,
			Name:       name,
			Position:   i,
			PipelineID: p.ID,
		})
	}
	return p
}

func TestPipelineFirstStage(t *testing.T) {
	p := defaultPipeline()
	first := p.FirstStage()
	require.NotNil(t, first)
	assert.Equal(t, "New", first.Name)

	empty := &Pipeline{}
	assert.Nil(t, empty.FirstStage())
}

func TestPipelineFindStageByName(t *testing.T) {
	p := defaultPipeline()

	t.Run("exact case-insensitive", func(t *testing.T) {
		s := p.FindStageByName("closed won")
		require.NotNil(t, s)
		assert.Equal(t, "Closed Won", s.Name)
	})

	t.Run("substring match", func(t *testing.T) {
		// "Proposal Sent" from the sender should land on "Proposal".
		s := p.FindStageByName("Proposal Sent")
		require.NotNil(t, s)
		assert.Equal(t, "Proposal", s.Name)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, p.FindStageByName("Totally Unknown Xyz"))
	})

	t.Run("empty hint", func(t *testing.T) {
		assert.Nil(t, p.FindStageByName(""))
	})
}

func TestPipelineFindStageByID(t *testing.T) {
	p := defaultPipeline()
	require.NotNil(t, p.FindStageByID("Qualified"))
	assert.Nil(t, p.FindStageByID("missing"))
	assert.Nil(t, p.FindStageByID(""))
}
