// Package pipeline turns fetched markup into the HTML written to a document
// target.
//
// Stages, in the order the root package runs them:
//   - Markdown preprocessing (line endings, ==highlight== syntax)
//   - Markdown to HTML conversion via Goldmark, with chroma highlighting
//   - Relative link resolution against the source URL
//   - Optional sanitizing with a bluemonday policy
//   - Asset injection (stylesheet, chroma CSS, MathJax)
//
// PlainHTML builds the escaped preformatted page used when rendering is
// disabled.
package pipeline
