package questionnaire

import (
	"fmt"
	"strings"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// Option は設問の選択肢です。
type Option struct {
	Key  string
	Text string
}

// Question は A/B/C で答える設問です。
type Question struct {
	Text      string
	Options   []Option
	Category  string
	Attribute string
}

// Answer は key に対応する Belief を返します。
func (q Question) Answer(key string) (domain.Belief, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	for _, o := range q.Options {
		if o.Key == key {
			return domain.Belief{
				Category:    q.Category,
				Attribute:   q.Attribute,
				Description: o.Text,
			}, nil
		}
	}
	return domain.Belief{}, fmt.Errorf("invalid answer %q for %s", key, q.Attribute)
}

// Keys は選択肢のキーを "A/B/C" の形で返します。
func (q Question) Keys() string {
	keys := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		keys = append(keys, o.Key)
	}
	return strings.Join(keys, "/")
}

// DefaultQuestions は5問の信条質問票です。
var DefaultQuestions = []Question{
	{
		Text: "What do you believe is the ideal role of government in society?",
		Options: []Option{
			{"A", "Minimal intervention; government should be as small as possible."},
			{"B", "Active role in welfare and regulation to ensure social justice."},
			{"C", "Preserve traditional values and maintain national security."},
		},
		Category:  "Political Ideology",
		Attribute: "government_role",
	},
	{
		Text: "Do you believe a free-market economy or a regulated economy is better for society?",
		Options: []Option{
			{"A", "Free-market economy; minimal regulations."},
			{"B", "Regulated economy to prevent inequalities."},
			{"C", "A mixed approach balancing freedom and regulation."},
		},
		Category:  "Economic Beliefs",
		Attribute: "economic_preference",
	},
	{
		Text: "Should individual rights ever be limited for the sake of the collective good?",
		Options: []Option{
			{"A", "Individual rights are paramount and should not be limited."},
			{"B", "Yes, if it benefits society as a whole."},
			{"C", "Only in extreme cases."},
		},
		Category:  "Social Values",
		Attribute: "individual_vs_collective",
	},
	{
		Text: "Do you believe in a higher power or deity?",
		Options: []Option{
			{"A", "Yes, and it significantly influences my life."},
			{"B", "No, I do not believe in a higher power."},
			{"C", "I'm unsure or agnostic."},
		},
		Category:  "Religious Beliefs",
		Attribute: "belief_in_higher_power",
	},
	{
		Text: "What responsibilities do individuals have toward others in their community or society?",
		Options: []Option{
			{"A", "Strong responsibilities; we should actively help others."},
			{"B", "Minimal responsibilities; individuals should focus on themselves."},
			{"C", "Some responsibilities, but personal goals come first."},
		},
		Category:  "Ethical Responsibilities",
		Attribute: "responsibility_to_others",
	},
}

// AnswerAll は設問と同じ数の回答から CharacterMap を作ります。
func AnswerAll(questions []Question, answers []string) (domain.CharacterMap, error) {
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("expected %d answers, got %d", len(questions), len(answers))
	}
	cmap := make(domain.CharacterMap, 0, len(questions))
	for i, q := range questions {
		b, err := q.Answer(answers[i])
		if err != nil {
			return nil, err
		}
		cmap = append(cmap, b)
	}
	return cmap, nil
}
