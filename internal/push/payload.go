// Package push sends Web Push reminders: due SRS cards, weak-area nudges
// and general study reminders.
package push

import (
	"fmt"
	"net/url"
	"strings"
)

// Notification tags. Browsers replace an earlier notification with the same tag.
const (
	TagSRSReminder   = "srs-reminder"
	TagWeakAreaNudge = "weak-area-nudge"
	TagStudyReminder = "study-reminder"
)

// Payload is the JSON body delivered to the service worker.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Tag   string `json:"tag"`
}

const srsTitle = "Cards Due for Review! / ပြန်လှည့်ရန် ကတ်များရှိပါတယ်!"

// SRSReminder builds the bilingual "cards due" notification for count cards.
func SRSReminder(count int) Payload {
	plural := "s"
	if count == 1 {
		plural = ""
	}
	return Payload{
		Title: srsTitle,
		Body:  fmt.Sprintf("You have %d card%s ready to review. / ပြန်လှည့်ရန် ကတ် %d ခုရှိသည်။", count, plural, count),
		URL:   "/study#review",
		Tag:   TagSRSReminder,
	}
}

type template struct {
	title string
	body  string
}

var weakAreaTemplates = []template{
	{
		title: "Time to study! / လေ့လာရန်အချိန်ပါ!",
		body:  "You haven't practiced {category} in {days} days. A quick review will help!\n{category}ကို {days} ရက်ကတည်းက မလေ့ကျင့်ရသေးပါ။ အမြန်ပြန်လေ့လာပါ!",
	},
	{
		title: "Let's review! / ပြန်လေ့လာရအောင်!",
		body:  "{category} could use some practice. Just a few questions!\n{category} အနည်းငယ် လေ့ကျင့်မည်။ မေးခွန်း အနည်းငယ်ပဲ!",
	},
	{
		title: "Don't forget! / မမေ့လျာ့ပါနဲ့!",
		body:  "It's been {days} days since you studied {category}. Keep your streak going!\n{category} လေ့လာတာ {days} ရက်ရှိပြီ။ ဆက်တိုက်လေ့ကျင့်ပါ!",
	},
}

var studyTemplates = []template{
	{
		title: "Time to study! / လေ့လာရန် အချိန်ရောက်ပြီ!",
		body:  "A few minutes of practice today keeps your knowledge fresh.\nယနေ့ မိနစ်အနည်းငယ် လေ့ကျင့်ပါ။",
	},
	{
		title: "Ready for your civics test? / နိုင်ငံရေးစာမေးပွဲ အဆင်သင့်ဖြစ်ပြီလား။",
		body:  "Keep practicing - you're making progress!\nဆက်လေ့ကျင့်ပါ - တိုးတက်နေပါပြီ!",
	},
	{
		title: "Study reminder / လေ့လာရန် သတိပေးချက်",
		body:  "A little study every day makes a big difference.\nနေ့တိုင်း အနည်းငယ် လေ့လာခြင်းက ကြီးမားသော ခြားနားချက် ဖြစ်စေပါသည်။",
	},
}

// NumWeakAreaTemplates is the number of weak-area message variants.
var NumWeakAreaTemplates = len(weakAreaTemplates)

// NumStudyTemplates is the number of study reminder variants.
var NumStudyTemplates = len(studyTemplates)

// WeakAreaNudge fills weak-area template pick (taken modulo the template
// count) with category and days. A negative days renders as "?".
func WeakAreaNudge(category string, days int, pick int) Payload {
	t := weakAreaTemplates[modIndex(pick, len(weakAreaTemplates))]
	d := "?"
	if days >= 0 {
		d = fmt.Sprint(days)
	}
	r := strings.NewReplacer("{category}", category, "{days}", d)
	return Payload{
		Title: t.title,
		Body:  r.Replace(t.body),
		URL:   "/practice?category=" + strings.ReplaceAll(url.QueryEscape(category), "+", "%20"),
		Tag:   TagWeakAreaNudge,
	}
}

// StudyReminder returns study reminder template pick.
func StudyReminder(pick int) Payload {
	t := studyTemplates[modIndex(pick, len(studyTemplates))]
	return Payload{
		Title: t.title,
		Body:  t.body,
		URL:   "/home",
		Tag:   TagStudyReminder,
	}
}

func modIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
