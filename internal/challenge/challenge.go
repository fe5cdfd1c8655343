// Package challenge generates the tasks a user has to solve to dismiss an alarm.
package challenge

import (
	"fmt"
	"strconv"

	"alarm-clock-backend/internal/models"
)

// Source is the randomness a generator draws from. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Challenge is a generated verification task
type Challenge struct {
	Type     models.ChallengeType `json:"type"`
	Sentence string               `json:"sentence,omitempty"`
	Question string               `json:"question,omitempty"`
	Answer   string               `json:"answer,omitempty"`
}

// Sentences is the corpus sentence challenges are drawn from
var Sentences = []string{
	"The quick brown fox jumps over the lazy dog with unprecedented agility",
	"A journey of a thousand miles begins with a single determined step forward",
	"Success is not final, failure is not fatal, it's the courage to continue that counts",
	"The only way to do great work is to love what you do passionately every day",
	"Innovation distinguishes between a leader and a follower in every aspect of life",
	"Your time is limited, don't waste it living someone else's life or following their dreams",
	"The future belongs to those who believe in the beauty of their wildest dreams",
	"Perseverance is not a long race; it is many short races one after the other continuously",
	"Excellence is not a skill, it's an attitude that we must cultivate daily",
	"The difference between ordinary and extraordinary is that little extra effort we put in",
}

// Operand ranges of math challenges, inclusive
const (
	minLeft  = 10
	maxLeft  = 50
	minRight = 2
	maxRight = 20
)

var operators = []string{"+", "-", "*"}

// Generate produces a challenge of the requested type. Unknown types yield a sentence challenge.
func Generate(src Source, challengeType string) Challenge {
	if models.ParseChallengeType(challengeType) == models.ChallengeMath {
		return generateMath(src)
	}
	return Challenge{
		Type:     models.ChallengeSentence,
		Sentence: Sentences[src.IntN(len(Sentences))],
	}
}

func generateMath(src Source) Challenge {
	n1 := minLeft + src.IntN(maxLeft-minLeft+1)
	n2 := minRight + src.IntN(maxRight-minRight+1)
	op := operators[src.IntN(len(operators))]

	return Challenge{
		Type:     models.ChallengeMath,
		Question: fmt.Sprintf("%d %s %d", n1, op, n2),
		Answer:   strconv.Itoa(Eval(n1, op, n2)),
	}
}

// Eval applies op to the operands
func Eval(n1 int, op string, n2 int) int {
	switch op {
	case "+":
		return n1 + n2
	case "-":
		return n1 - n2
	case "*":
		return n1 * n2
	default:
		panic("challenge: unknown operator " + op)
	}
}

// Verify reports whether input solves c. Sentences must be retyped exactly,
// including case and whitespace; math answers must equal the stringified result.
func Verify(c Challenge, input string) bool {
	switch c.Type {
	case models.ChallengeMath:
		return input == c.Answer
	default:
		return input == c.Sentence
	}
}
