// Package extract turns one page's rendered markup into a model.Metrics record.
//
// Extraction never fails. Malformed markup is handled by the tolerant HTML5
// parser in golang.org/x/net/html (wrapped by goquery); if building the
// document fails entirely, a text-only pass strips the markup with
// bluemonday and counts words while every structural metric stays zero.
//
// Character lengths are counted as runes after NFC normalisation, so that
// "café" is four characters whether the é is precomposed or not.
package extract
