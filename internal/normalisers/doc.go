// Package normalisers groups the text extractors for the supported document
// formats:
//
//   - plaintext reads .txt and .md files as UTF-8 text (driven.FileReader)
//   - pdf extracts page text from .pdf files with an optional page bound (driven.PageExtractor)
//
// services.TextExtractor composes them and picks one by extension.
package normalisers
