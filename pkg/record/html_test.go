package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tags removed", in: "<b>Bold</b> <i>italic</i> text", want: "Bold italic text"},
		{name: "style block removed", in: "<style>.x{color:red}</style>word", want: "word"},
		{name: "script block removed", in: "a<script>alert(1)</script>b", want: "ab"},
		{
			name: "style spans lines",
			in:   "<style>\n.x { color: red; }\n</style>kept",
			want: "kept",
		},
		{name: "entities after tags", in: "<b>A</b> &amp; B", want: "A & B"},
		{name: "plain text untouched", in: "no markup here", want: "no markup here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestStripHTMLEntities(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fixed table",
			in:   `A &amp; B &lt; C &gt; D &quot;quoted&quot; &nbsp; space`,
			want: `A & B < C > D "quoted"   space`,
		},
		{name: "apostrophes", in: "it&#39;s &#x27;quoted&#x27;", want: "it's 'quoted'"},
		{name: "slash", in: "a&#x2F;b", want: "a/b"},
		{name: "numeric decimal", in: "&#65;&#66;", want: "AB"},
		{name: "numeric hex", in: "&#x41;&#x62;", want: "Ab"},
		{name: "unknown named entity deleted", in: "x&copy;y", want: "xy"},
		{name: "unterminated entity kept", in: "a &amp b", want: "a &amp b"},
		{name: "double-encoded ampersand", in: "&amp;amp;", want: "&"},
		{name: "double-encoded nbsp", in: "&amp;nbsp;", want: " "},
		{name: "double-encoded lt", in: "&amp;lt;tag&amp;gt;", want: "<tag>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTMLEntities(tt.in))
		})
	}
}

func TestStripHTMLMedia(t *testing.T) {
	assert.Equal(t, "Text  image.jpg  more text",
		StripHTMLMedia(`Text <img src="image.jpg"> more text`))
	assert.Equal(t, "Text  image.jpg  more text",
		StripHTMLMedia(`Text <img src='image.jpg'> more text`))
	assert.Equal(t, " a.png  b.png ",
		StripHTMLMedia(`<img src="a.png"><img src="b.png">`))
}
