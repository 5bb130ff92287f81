package quiz

import (
	"context"
	"errors"
	"testing"

	"ace/internal/failure"
)

const validQuiz = `{
  "title": "Cell Biology",
  "questions": [
    {
      "question": "What is the powerhouse of the cell?",
      "options": ["Nucleus", "Mitochondria", "Ribosome", "Golgi apparatus"],
      "correctAnswer": "Mitochondria"
    },
    {
      "question": "Which process splits one cell into two?",
      "options": ["Mitosis", "Osmosis", "Diffusion", "Respiration"],
      "correctAnswer": "Mitosis"
    }
  ]
}`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: validQuiz},
		{name: "codeFence", raw: "```json\n" + validQuiz + "\n```"},
		{name: "notJSON", raw: "Here is your quiz!", wantErr: true},
		{name: "truncated", raw: `{"title": "Cells", "questions": [`, wantErr: true},
		{name: "missingTitle", raw: `{"questions":[{"question":"q","options":["a","b","c","d"],"correctAnswer":"a"}]}`, wantErr: true},
		{name: "noQuestions", raw: `{"title":"Cells","questions":[]}`, wantErr: true},
		{name: "emptyQuestion", raw: `{"title":"Cells","questions":[{"question":" ","options":["a","b","c","d"],"correctAnswer":"a"}]}`, wantErr: true},
		{name: "threeOptions", raw: `{"title":"Cells","questions":[{"question":"q","options":["a","b","c"],"correctAnswer":"a"}]}`, wantErr: true},
		{name: "answerNotAnOption", raw: `{"title":"Cells","questions":[{"question":"q","options":["a","b","c","d"],"correctAnswer":"e"}]}`, wantErr: true},
		{name: "trailingGarbage", raw: validQuiz + " garbage", wantErr: true},
		{name: "twoObjects", raw: validQuiz + "\n" + validQuiz, wantErr: true},
		{name: "trailingWhitespace", raw: validQuiz + "\n\n"},
		{name: "wrongTypes", raw: `{"title":"Cells","questions":[{"question":"q","options":"a,b,c,d","correctAnswer":"a"}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw)
			if tt.wantErr {
				if !failure.Is(err, failure.MalformedResponse) {
					t.Errorf("Parse() error = %v, want malformed response", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if q.Title != "Cell Biology" || len(q.Questions) != 2 {
				t.Errorf("Parse() = %+v", q)
			}
		})
	}
}

func TestQuestionIsCorrect(t *testing.T) {
	q, err := Parse(validQuiz)
	if err != nil {
		t.Fatal(err)
	}

	first := q.Questions[0]
	if !first.IsCorrect("Mitochondria") {
		t.Error("IsCorrect(Mitochondria) = false")
	}
	if first.IsCorrect("Nucleus") {
		t.Error("IsCorrect(Nucleus) = true")
	}
	if first.IsCorrect("mitochondria") {
		t.Error("IsCorrect should compare exactly")
	}
}

type fakeBackend struct {
	raw   string
	err   error
	calls int
}

func (f *fakeBackend) GenerateQuiz(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.raw, f.err
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		backend     *fakeBackend
		wantKind    failure.Kind
		wantMessage string
	}{
		{
			name:    "success",
			text:    "Cells and their organelles",
			backend: &fakeBackend{raw: validQuiz},
		},
		{
			name:        "upstreamFailure",
			text:        "notes",
			backend:     &fakeBackend{err: errors.New("Error 503")},
			wantKind:    failure.Generation,
			wantMessage: "Failed to generate quiz. Please check your input and API key.",
		},
		{
			name:     "malformed",
			text:     "notes",
			backend:  &fakeBackend{raw: `{"title":"x"}`},
			wantKind: failure.MalformedResponse,
		},
		{
			name:     "emptyInput",
			text:     "",
			backend:  &fakeBackend{raw: validQuiz},
			wantKind: failure.Configuration,
		},
		{
			name:     "noCredential",
			text:     "notes",
			backend:  &fakeBackend{err: failure.New(failure.Configuration, "No API key selected.", nil)},
			wantKind: failure.Configuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewGenerator(tt.backend).Generate(context.Background(), tt.text)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Generate() error = %v", err)
				}
				if len(q.Questions) != 2 {
					t.Errorf("questions = %d, want 2", len(q.Questions))
				}
				return
			}
			if !failure.Is(err, tt.wantKind) {
				t.Fatalf("Generate() error = %v, want kind %s", err, tt.wantKind)
			}
			if tt.wantMessage != "" && err.Error() != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMessage)
			}
		})
	}
}
