package visibility

import "testing"

func TestEval(t *testing.T) {
	values := Map{
		"houseType": "Other",
		"petType2":  "Dog",
		"multiDay":  "on",
		"quoted":    `say "hi" && bye`,
	}

	tests := []struct {
		rule string
		want bool
	}{
		{"", true},
		{`houseType == "Other"`, true},
		{`houseType != "Other"`, false},
		{`houseType == 'Condo'`, false},
		{`petType2 == "Dog" && multiDay`, true},
		{`petType2 == "Cat" && multiDay`, false},
		{`petType2 == "Cat" || multiDay == true`, true},
		{`missing`, false},
		{`missing == false`, true},
		{`multiDay == true`, true},
		{`quoted == "say \"hi\" && bye"`, true},
		{Equals("houseType", "Other"), true},
		{IsSet("multiDay"), true},
		{IsSet("missing"), false},
	}

	for _, tt := range tests {
		got, err := Eval(tt.rule, values)
		if err != nil {
			t.Fatalf("Eval(%q) error: %v", tt.rule, err)
		}
		if got != tt.want {
			t.Fatalf("Eval(%q) = %v, want %v", tt.rule, got, tt.want)
		}
	}
}

func TestEval_Errors(t *testing.T) {
	for _, rule := range []string{
		`houseType ==`,
		`== "Other"`,
		`houseType == "Other`,
		`a && `,
		`9lives`,
		`missing && `,
		`houseType == "Other" || 9lives`,
		`missing && houseType == `,
	} {
		if _, err := Eval(rule, Map{}); err == nil {
			t.Fatalf("Eval(%q) expected error", rule)
		}
	}
}
