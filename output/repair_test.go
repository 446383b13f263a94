package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSmartQuotes(t *testing.T) {
	assert.Equal(t, `"a" 'b'`, NormalizeSmartQuotes("“a” ‘b’"))
}

func TestStripComments(t *testing.T) {
	tests := []struct{ in, want string }{
		{"{\"a\": 1} // trailing", `{"a": 1} `},
		{"{/* x */\"a\": 1}", `{"a": 1}`},
		{"{\"u\": \"http://x\"}", `{"u": "http://x"}`},
		{"{'u': '//kept'}", `{'u': '//kept'}`},
		{"{\"a\": 1 // c\n}", "{\"a\": 1 \n}"},
		{"{\"a\": 1 /* never closed", `{"a": 1 `},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripComments(tt.in), tt.in)
	}
}

func TestRemoveTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a":[1,2]}`, RemoveTrailingCommas(`{"a":[1,2,],}`))
	assert.Equal(t, "{\"a\":1\n}", RemoveTrailingCommas("{\"a\":1,\n}"))
	assert.Equal(t, `{"a":"x,}"}`, RemoveTrailingCommas(`{"a":"x,}"}`))
}

func TestQuoteUnquotedKeys(t *testing.T) {
	assert.Equal(t, `{"a": 1, "b_c": {"d": 2}}`, QuoteUnquotedKeys(`{a: 1, b_c: {d: 2}}`))
	assert.Equal(t, `{"url": "x, y: z"}`, QuoteUnquotedKeys(`{"url": "x, y: z"}`))
	assert.Equal(t, `{"list": [true, null]}`, QuoteUnquotedKeys(`{list: [true, null]}`))
}

func TestSingleToDoubleQuotes(t *testing.T) {
	assert.Equal(t, `{"a": "say \"hi\"", "b": "it's"}`, SingleToDoubleQuotes(`{'a': 'say "hi"', 'b': 'it\'s'}`))
	assert.Equal(t, `{"a": "it's"}`, SingleToDoubleQuotes(`{"a": "it's"}`))
	assert.Equal(t, `{"a": "x\ny"}`, SingleToDoubleQuotes(`{'a': 'x\ny'}`))
}

func TestRepairs_Order(t *testing.T) {
	names := make([]string, 0, len(Repairs))
	for _, r := range Repairs {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"smart_quotes", "strip_comments", "trailing_commas", "quote_keys", "single_quotes"}, names)
}
