package interview

import "math/rand/v2"

// Interviewer phrases are English only, as in the real interview.

var correctFeedback = []string{
	"That's correct.",
	"Yes, that's right.",
	"Correct.",
}

var incorrectFeedback = []string{
	"That's not quite right.",
	"I'm sorry, that's not correct.",
	"Not quite.",
}

var greetings = []string{
	"Good morning. I'm going to ask you some questions about U.S. history and government. Please answer to the best of your ability.",
	"Hello. Today I'll be asking you some questions about United States civics. Please listen carefully and answer each question.",
	"Welcome. I'm going to read you some questions about American government and history. Please give your best answer to each one.",
}

var closingsPass = []string{
	"Congratulations. You have successfully completed the civics portion of your interview. Well done.",
	"Great job. You've passed the civics test. You should be very proud of your preparation.",
}

var closingsFail = []string{
	"Thank you for your effort today. You can retake this test to continue preparing for your interview.",
	"Don't be discouraged. Many people need extra practice. You can try again when you're ready.",
}

// Feedback returns an interviewer reaction to an answer.
func Feedback(correct bool, rng *rand.Rand) string {
	if correct {
		return pick(correctFeedback, rng)
	}
	return pick(incorrectFeedback, rng)
}

// Greeting returns an opening statement.
func Greeting(rng *rand.Rand) string {
	return pick(greetings, rng)
}

// Closing returns the statement read when the interview ends.
func Closing(passed bool, rng *rand.Rand) string {
	if passed {
		return pick(closingsPass, rng)
	}
	return pick(closingsFail, rng)
}

func pick(lines []string, rng *rand.Rand) string {
	if rng == nil {
		return lines[rand.IntN(len(lines))]
	}
	return lines[rng.IntN(len(lines))]
}
