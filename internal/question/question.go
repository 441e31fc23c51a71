// Package question holds the bilingual civics question bank and the USCIS
// category mapping used to group questions for mastery and readiness.
package question

// StudyAnswer is one acceptable answer shown on study cards and used by the
// interview grader.
type StudyAnswer struct {
	TextEN string `json:"text_en"`
	TextMY string `json:"text_my"`
}

// Answer is one multiple-choice option.
type Answer struct {
	TextEN  string `json:"text_en"`
	TextMY  string `json:"text_my"`
	Correct bool   `json:"correct"`
}

// Question is a single civics test question.
type Question struct {
	ID           string        `json:"id"`
	QuestionEN   string        `json:"question_en"`
	QuestionMY   string        `json:"question_my"`
	Category     Category      `json:"category"`
	StudyAnswers []StudyAnswer `json:"study_answers"`
	Answers      []Answer      `json:"answers"`
}

// CorrectAnswer returns the correct multiple-choice option.
func (q Question) CorrectAnswer() Answer {
	for _, a := range q.Answers {
		if a.Correct {
			return a
		}
	}
	return Answer{}
}

// IsCorrect reports whether the option text matches the correct answer.
func (q Question) IsCorrect(textEN string) bool {
	return q.CorrectAnswer().TextEN == textEN
}
