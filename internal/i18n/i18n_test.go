package i18n

import "testing"

func TestBurmeseNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "၀"},
		{7, "၇"},
		{42, "၄၂"},
		{1800, "၁၈၀၀"},
		{-3, "-၃"},
	}
	for _, tt := range tests {
		if got := BurmeseNumber(tt.in); got != tt.want {
			t.Errorf("BurmeseNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToBurmeseDigits_KeepsOtherRunes(t *testing.T) {
	got := ToBurmeseDigits("Score: 85%")
	if got != "Score: ၈၅%" {
		t.Errorf("got %q", got)
	}
}

func TestBilingualString(t *testing.T) {
	if got := (Bilingual{EN: "Now", MY: "ယခု"}).String(); got != "Now / ယခု" {
		t.Errorf("got %q", got)
	}
	if got := (Bilingual{EN: "1800s"}).String(); got != "1800s" {
		t.Errorf("got %q", got)
	}
}
