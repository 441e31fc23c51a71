package session

import (
	"math/rand/v2"

	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/shuffle"
)

// MockQuestions draws a mock test from the whole bank. A nil rng uses the
// global source.
func MockQuestions(bank []question.Question, rng *rand.Rand) []question.Question {
	return shuffle.Take(bank, MockQuestionCount, rng)
}

// ShuffleOptions returns the questions with their answer options in random
// order.
func ShuffleOptions(questions []question.Question, rng *rand.Rand) []question.Question {
	out := make([]question.Question, len(questions))
	for i, q := range questions {
		q.Answers = shuffle.Shuffle(q.Answers, rng)
		out[i] = q
	}
	return out
}
