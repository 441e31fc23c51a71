package session

import (
	"time"

	"github.com/civicprep/civicprep/internal/i18n"
	"github.com/civicprep/civicprep/internal/question"
)

// CategoryResult is per-category performance within one session.
type CategoryResult struct {
	Category  question.Category
	Name      i18n.Bilingual
	Attempted int
	Correct   int
	Accuracy  float64
}

// Summary holds the data displayed at the end of a session.
type Summary struct {
	Mode       Mode
	EndReason  EndReason
	Duration   time.Duration
	Total      int
	Correct    int
	Incorrect  int
	Accuracy   float64
	Passed     bool
	Categories []CategoryResult
	Missed     []Response
}

// Summary builds the summary from the answers so far. Categories appear in
// the order they were first asked.
func (s *Session) Summary() Summary {
	correct, incorrect := s.Score()
	sum := Summary{
		Mode:      s.mode,
		EndReason: s.endReason,
		Duration:  s.Elapsed(),
		Total:     len(s.responses),
		Correct:   correct,
		Incorrect: incorrect,
		Passed:    s.passed(),
	}
	if sum.Total > 0 {
		sum.Accuracy = float64(correct) / float64(sum.Total)
	}

	index := make(map[question.Category]int)
	for _, r := range s.responses {
		cat := r.Question.Category
		i, ok := index[cat]
		if !ok {
			i = len(sum.Categories)
			index[cat] = i
			sum.Categories = append(sum.Categories, CategoryResult{Category: cat, Name: cat.Name()})
		}
		cr := &sum.Categories[i]
		cr.Attempted++
		if r.IsCorrect {
			cr.Correct++
		} else {
			sum.Missed = append(sum.Missed, r)
		}
	}
	for i := range sum.Categories {
		cr := &sum.Categories[i]
		cr.Accuracy = float64(cr.Correct) / float64(cr.Attempted)
	}
	return sum
}

var endMessages = map[EndReason]i18n.Bilingual{
	EndPassThreshold: {
		EN: "USCIS interview stops after 12 correct answers. You reached the passing threshold early.",
		MY: "အဖြေမှန် ၁၂ ချက်ဖြေဆိုပြီးလျှင်ရပ်တန့်ပါတယ်။ စောစီးအောင်မြင်စွာဖြေဆိုနိုင်သည်ကို ဂုဏ်ယူလိုက်ပါ။",
	},
	EndFailThreshold: {
		EN: "Interview ended after 9 incorrect answers. Review the feedback below before retrying.",
		MY: "အမှား ၉ ကြိမ်ဖြေဆိုပြီးနောက်ရပ်တန့်လိုက်ပါတယ်။ ထပ်မံကြိုးစားရန် ဖြေဆိုချက်များကိုပြန်လည်သုံးသပ်ပါ။",
	},
	EndTime:     {EN: "Time expired before the full set finished."},
	EndComplete: {EN: "You completed every question."},
	EndQuit:     {EN: "Session ended early."},
}

// Message explains the end reason to the learner.
func (r EndReason) Message() i18n.Bilingual {
	return endMessages[r]
}
