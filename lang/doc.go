// Package lang parses CMS template documents.
//
// A document has up to three sections separated by lines of two or more '='
// characters:
//
//	title = "Blog"          ; configuration, INI syntax
//	[viewBag]
//	layout = default
//	==
//	<?php                   ; script, captured verbatim
//	function onStart() {}
//	?>
//	==
//	<h1>{{ title|upper }}</h1>
//	{% for post in posts %}{{ post.title }}{% endfor %}
//
// The markup section is written in a Twig-like language of content runs,
// "{{ expr }}" output directives, "{% tag %}" statement directives and
// "{# #}" comments.
//
// # Sections
//
// The section shape is decided from the text alone, preferring, in order:
//
//  1. configuration == script == markup
//  2. configuration == markup
//  3. script == markup
//  4. markup only
//
// A separator line is structural only if everything before it reads as a
// header section. Otherwise it is ordinary markup content, so a document
// with no valid header never fails to split.
//
// # Expressions
//
// Binary operators, loosest first:
//
//	or
//	and
//	b-or
//	b-xor
//	b-and
//	== != <=>
//	< > >= <= not in, in, matches, starts with, ends with
//	..
//	+ -
//	~
//	* / // %
//	** (right-associative)
//	??
//
// Prefix "not", "-" and "+" bind tighter than any binary operator, and the
// postfix forms (".name", "[index]", "[low:high]", "(args)", "|filter" and
// "is test") bind tighter still. The ternary "c ? a : b" and its short forms
// "c ?: b" and "c ? a" bind loosest of all.
//
// # Errors
//
// Parsing always yields a [Document]. Problems are recorded as
// [Diagnostic] values; a malformed directive is dropped from the tree and
// parsing resumes after its close delimiter.
package lang
