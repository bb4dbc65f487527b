package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerMatches(t *testing.T) {
	assert.True(t, answerMatches("B. Seoul", "B. Seoul"))
	assert.True(t, answerMatches("B. Seoul", "Seoul"))
	assert.True(t, answerMatches("B. Seoul", "seoul"))
	assert.True(t, answerMatches("B. Seoul", " Seoul "))
	assert.False(t, answerMatches("B. Seoul", "Busan"))
	assert.False(t, answerMatches("B. Seoul", ""))
}

func TestQuizBankCycles(t *testing.T) {
	b := NewQuizBank()

	first, err := b.Challenge(t.Context())
	require.NoError(t, err)
	second, err := b.Challenge(t.Context())
	require.NoError(t, err)
	assert.NotEqual(t, first.Question, second.Question)
}
