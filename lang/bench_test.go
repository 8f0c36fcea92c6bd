package lang

import (
	"context"
	"strings"
	"testing"
)

const benchDocument = `title = "Blog"
url = "/blog/:page?"

[blogPosts]
pageNumber = "{{ :page }}"
==
<?php
function onStart() { $this['year'] = date('Y'); }
?>
==
<h1>{{ title|upper }}</h1>
{% for post in posts|slice(0, 10) %}
  <article class="{{ loop.index is odd ? 'odd' : 'even' }}">
    <h2>{{ post.title ~ ' (' ~ post.published_at|date('M d') ~ ')' }}</h2>
    {% if post.tags is not empty %}{{ post.tags|join(', ') }}{% endif %}
  </article>
{% endfor %}
{% partial 'footer' year = year %}
`

func BenchmarkParseString(b *testing.B) {
	ctx := context.Background()

	for b.Loop() {
		if _, err := ParseString(ctx, benchDocument); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseString_Cached(b *testing.B) {
	ClearCache()
	b.Cleanup(ClearCache)

	ctx := context.Background()

	for b.Loop() {
		if _, err := ParseString(ctx, benchDocument, WithCache(true)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseReader(b *testing.B) {
	ctx := context.Background()

	for b.Loop() {
		if _, err := ParseReader(ctx, strings.NewReader(benchDocument)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSplit(b *testing.B) {
	for b.Loop() {
		Split(benchDocument)
	}
}

func BenchmarkAll(b *testing.B) {
	doc, err := ParseString(context.Background(), benchDocument)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		n := 0
		for range All(doc) {
			n++
		}
	}
}
