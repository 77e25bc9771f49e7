package epub

// stylesheet is embedded into every generated book. It targets the
// styling hook classes the normalizer adds plus bare article markup.
const stylesheet = `body {
  font-family: Georgia, serif;
  line-height: 1.6;
  margin: 0 1em;
}
h1, h2, h3, h4, h5, h6, .webtome-heading {
  font-family: Helvetica, Arial, sans-serif;
  line-height: 1.25;
}
p {
  margin: 0 0 1em 0;
  text-align: justify;
}
img, .webtome-img {
  max-width: 100%;
  height: auto;
  display: block;
  margin: 1em auto;
}
pre, .webtome-pre {
  white-space: pre-wrap;
  font-size: 0.9em;
  background: #f4f4f4;
  padding: 0.75em;
}
blockquote {
  border-left: 3px solid #ccc;
  margin-left: 0;
  padding-left: 1em;
  color: #444;
}
table {
  border-collapse: collapse;
}
td, th {
  border: 1px solid #ccc;
  padding: 0.25em 0.5em;
}
`
