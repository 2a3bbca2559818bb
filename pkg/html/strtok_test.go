package html

import (
	"reflect"
	"testing"
)

func TestStringTokenizer(t *testing.T) {
	tests := []struct {
		in   string
		seps string
		want []string
	}{
		{"1,2,3", ",", []string{"1", "2", "3"}},
		{`"Times, Roman",Arial`, ",", []string{"Times, Roman", "Arial"}},
		{"a b,", ", ", []string{"a", "b"}},
		{"", ",", nil},
		{",x", ",", []string{"", "x"}},
	}
	for _, tt := range tests {
		st := NewStringTokenizer(tt.in, tt.seps)
		var got []string
		for st.HasMore() {
			got = append(got, st.Next())
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestStringTokenizer_Exhausted(t *testing.T) {
	st := NewStringTokenizer("a", ",")
	st.Next()
	if st.HasMore() {
		t.Error("expected tokenizer to be exhausted")
	}
	if got := st.Next(); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
	st.Tokenize("x;y", ";")
	if got := st.Next(); got != "x" {
		t.Errorf("expected restart to yield x, got %q", got)
	}
}
