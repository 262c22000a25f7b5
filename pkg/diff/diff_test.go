package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	from := "You are a scrum master. Keep answers short."
	to := "You are an agile coach. Keep answers short and friendly."

	res := Compute(from, to)

	assert.Greater(t, res.Insertions, 0)
	assert.Greater(t, res.Deletions, 0)
	assert.Greater(t, res.Distance, 0)
	assert.NotEmpty(t, res.Patch)

	// 所有 equal+delete 片段拼回原文，equal+insert 拼回新文
	var gotFrom, gotTo string
	for _, s := range res.Segments {
		switch s.Op {
		case OpEqual:
			gotFrom += s.Text
			gotTo += s.Text
		case OpDelete:
			gotFrom += s.Text
		case OpInsert:
			gotTo += s.Text
		}
	}
	assert.Equal(t, from, gotFrom)
	assert.Equal(t, to, gotTo)

	out, ok := Apply(from, res.Patch)
	assert.True(t, ok)
	assert.Equal(t, to, out)
}

func TestCompute_Identical(t *testing.T) {
	res := Compute("same", "same")
	assert.Equal(t, 0, res.Insertions)
	assert.Equal(t, 0, res.Deletions)
	assert.Equal(t, 0, res.Distance)
	assert.Equal(t, []Segment{{Op: OpEqual, Text: "same"}}, res.Segments)
}

func TestApply_BadPatch(t *testing.T) {
	_, ok := Apply("x", "@@ not a patch")
	assert.False(t, ok)
}
