package llm

import "testing"

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"inline fence", "```{\"a\":1}```", `{"a":1}`},
		{"whitespace", "  \n```JSON\n{}\n```  \n", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"plain object", `{"label":"Cellule"}`, `{"label":"Cellule"}`, true},
		{"prose around", `Voici la réponse : {"a":[1,2]} Bonne révision !`, `{"a":[1,2]}`, true},
		{"array", "Résultat:\n[{\"q\":\"x\"}]", `[{"q":"x"}]`, true},
		{"brace inside string", `{"t":"a } b"}`, `{"t":"a } b"}`, true},
		{"escaped quote", `{"t":"il dit \"{\""}`, `{"t":"il dit \"{\""}`, true},
		{"first invalid then valid", `{oops} {"ok":true}`, `{"ok":true}`, true},
		{"fenced with prose", "Voici:\n```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"no json", "Désolé, je ne peux pas.", "", false},
		{"unterminated", `{"a":`, "", false},
		{"scalar only", `42`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (got %s)", ok, tt.wantOK, got)
			}
			if string(got) != tt.want {
				t.Errorf("ExtractJSON = %s, want %s", got, tt.want)
			}
		})
	}
}
