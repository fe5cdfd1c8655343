package challenge

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"

	"alarm-clock-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource replays the given draws in order
type fixedSource struct {
	draws []int
	pos   int
}

func (f *fixedSource) IntN(n int) int {
	v := f.draws[f.pos%len(f.draws)]
	f.pos++
	return v % n
}

func TestGenerateSentence(t *testing.T) {
	c := Generate(&fixedSource{draws: []int{3}}, "sentence")

	assert.Equal(t, models.ChallengeSentence, c.Type)
	assert.Equal(t, Sentences[3], c.Sentence)
	assert.Empty(t, c.Answer)
}

func TestGenerateUnknownTypeFallsBackToSentence(t *testing.T) {
	c := Generate(&fixedSource{draws: []int{0}}, "riddle")

	assert.Equal(t, models.ChallengeSentence, c.Type)
	assert.Equal(t, Sentences[0], c.Sentence)
}

func TestGenerateMathFixedDraws(t *testing.T) {
	// n1 = 10+15, n2 = 2+5, op = "*"
	c := Generate(&fixedSource{draws: []int{15, 5, 2}}, "math")

	assert.Equal(t, models.ChallengeMath, c.Type)
	assert.Equal(t, "25 * 7", c.Question)
	assert.Equal(t, "175", c.Answer)
}

func TestGenerateMathAnswerMatchesQuestion(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	seen := map[string]bool{}

	for i := 0; i < 2000; i++ {
		c := Generate(src, "math")

		var n1, n2 int
		var op string
		_, err := fmt.Sscanf(c.Question, "%d %s %d", &n1, &op, &n2)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, n1, 10)
		assert.LessOrEqual(t, n1, 50)
		assert.GreaterOrEqual(t, n2, 2)
		assert.LessOrEqual(t, n2, 20)
		assert.Equal(t, strconv.Itoa(Eval(n1, op, n2)), c.Answer)
		seen[op] = true
	}

	assert.Len(t, seen, 3)
}

func TestSentenceCorpus(t *testing.T) {
	assert.GreaterOrEqual(t, len(Sentences), 10)
	src := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 100; i++ {
		assert.Contains(t, Sentences, Generate(src, "sentence").Sentence)
	}
}

func TestVerify(t *testing.T) {
	s := Challenge{Type: models.ChallengeSentence, Sentence: "Wake up now"}
	assert.True(t, Verify(s, "Wake up now"))
	assert.False(t, Verify(s, "wake up now"))
	assert.False(t, Verify(s, "Wake up now "))
	assert.False(t, Verify(s, "Wake  up now"))

	m := Challenge{Type: models.ChallengeMath, Question: "12 - 15", Answer: "-3"}
	assert.True(t, Verify(m, "-3"))
	assert.False(t, Verify(m, "3"))
}
